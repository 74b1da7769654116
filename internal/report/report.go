// Package report строит итоговый отчет интервью и рендерит его в текст или PDF.
package report

import (
	"fmt"
	"time"

	"interview-practice/internal/scoring"
	"interview-practice/internal/session"
)

// Title заголовок отчета
const Title = "Job Interview AI - Report"

// Entry блок отчета по одному вопросу
type Entry struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
	Max      int    `json:"max"`
	Signal   string `json:"signal,omitempty"`
}

// Report итог интервью в порядке вопросов
type Report struct {
	Title       string    `json:"title"`
	Entries     []Entry   `json:"entries"`
	Total       int       `json:"total"`
	Max         int       `json:"max"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Build собирает отчет. Вопросы без ответа или оценки пропускаются,
// максимум считается по всем N вопросам.
func Build(questions []string, answers map[int]string, scores map[int]scoring.Record, maxPerQuestion int) Report {
	r := Report{
		Title:       Title,
		Entries:     make([]Entry, 0, len(questions)),
		Max:         len(questions) * maxPerQuestion,
		GeneratedAt: time.Now(),
	}

	for i, q := range questions {
		answer, ok := answers[i]
		if !ok {
			continue
		}
		rec, ok := scores[i]
		if !ok {
			continue
		}

		r.Entries = append(r.Entries, Entry{
			Number:   i + 1,
			Question: q,
			Answer:   answer,
			Score:    rec.Score,
			Max:      maxPerQuestion,
			Signal:   rec.Signal,
		})
		r.Total += rec.Score
	}

	return r
}

// FromResult строит отчет по финализированной сессии
func FromResult(res *session.Result) Report {
	return Build(res.Questions, res.Answers, res.Scores, res.MaxPerQuestion)
}

// FinalLine строка итоговой оценки
func (r Report) FinalLine() string {
	return fmt.Sprintf("Final Score: %d / %d", r.Total, r.Max)
}

// Artifact готовый файл отчета
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Renderer превращает отчет в файл
type Renderer interface {
	Render(r Report) (*Artifact, error)
}

const (
	FormatText = "text"
	FormatPDF  = "pdf"
)

// NewRenderer возвращает рендерер по имени формата
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "", FormatText:
		return TextRenderer{}, nil
	case FormatPDF:
		return PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
