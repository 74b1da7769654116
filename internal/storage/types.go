package storage

import (
	"time"

	"interview-practice/internal/report"
)

// InterviewResult архивная запись завершенного интервью
type InterviewResult struct {
	InterviewID string         `json:"interview_id"`
	Timestamp   string         `json:"timestamp"`
	Duration    string         `json:"duration,omitempty"`
	TotalScore  int            `json:"total_score"`
	MaxScore    int            `json:"max_score"`
	Entries     []report.Entry `json:"entries"`
}

// Report восстанавливает отчет из архивной записи
func (r *InterviewResult) Report() report.Report {
	generated, _ := time.Parse(time.RFC3339, r.Timestamp)
	return report.Report{
		Title:       report.Title,
		Entries:     r.Entries,
		Total:       r.TotalScore,
		Max:         r.MaxScore,
		GeneratedAt: generated,
	}
}
