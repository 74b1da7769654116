package scoring

import (
	"context"
	"strings"
)

const LexicalName = "lexical"

// Lexical оценивает пересечение слов вопроса и ответа
type Lexical struct {
	base
}

func NewLexical(t Thresholds, opts ...Option) *Lexical {
	return &Lexical{base: newBase(t, opts)}
}

func (l *Lexical) Name() string { return LexicalName }

func (l *Lexical) Score(ctx context.Context, question, answer string) Record {
	return l.record(ctx, question, answer, LexicalRelevance(question, answer))
}

// LexicalRelevance доля слов вопроса, встречающихся в ответе.
// Слова - нижний регистр и разбиение по пробелам, пунктуация остается частью слова.
func LexicalRelevance(question, answer string) float64 {
	qWords := wordSet(question)
	if len(qWords) == 0 {
		return 0
	}

	aWords := wordSet(answer)
	common := 0
	for w := range qWords {
		if aWords[w] {
			common++
		}
	}
	return float64(common) / float64(len(qWords))
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
