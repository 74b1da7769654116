package report

import (
	"fmt"
	"strings"
)

const (
	TextFilename    = "interview_report.txt"
	TextContentType = "text/plain; charset=utf-8"
)

// TextRenderer простой текстовый отчет
type TextRenderer struct{}

func (TextRenderer) Render(r Report) (*Artifact, error) {
	var b strings.Builder

	b.WriteString(r.Title)
	b.WriteString("\n\n")

	for _, e := range r.Entries {
		b.WriteString(fmt.Sprintf("Q%d: %s\n", e.Number, e.Question))
		for _, line := range answerLines(e.Answer) {
			b.WriteString(fmt.Sprintf("Answer: %s\n", line))
		}
		b.WriteString(fmt.Sprintf("Score: %d / %d\n", e.Score, e.Max))
		if e.Signal != "" {
			b.WriteString(fmt.Sprintf("Emotion: %s\n", e.Signal))
		}
		b.WriteString("\n")
	}

	b.WriteString(r.FinalLine())
	b.WriteString("\n")

	return &Artifact{
		Filename:    TextFilename,
		ContentType: TextContentType,
		Data:        []byte(b.String()),
	}, nil
}

// answerLines разбивает ответ по переводам строк
func answerLines(answer string) []string {
	answer = strings.ReplaceAll(answer, "\r\n", "\n")
	return strings.Split(answer, "\n")
}
