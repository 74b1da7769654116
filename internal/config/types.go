package config

import (
	"interview-practice/internal/question"
	"interview-practice/internal/scoring"
)

// Config представляет конфигурацию интервью
type Config struct {
	InterviewConfig InterviewConfig `yaml:"interview_config"`
	Questions       []string        `yaml:"questions"`
}

// InterviewConfig содержит правила оценки и формат отчета
type InterviewConfig struct {
	Scorer       string  `yaml:"scorer"`
	Threshold    float64 `yaml:"threshold"`
	HighScore    int     `yaml:"high_score"`
	LowScore     int     `yaml:"low_score"`
	MaxBonus     int     `yaml:"max_bonus"`
	AllowReview  bool    `yaml:"allow_review"`
	ReportFormat string  `yaml:"report_format"`
	OutputsDir   string  `yaml:"outputs_dir"`
}

const (
	ReportFormatText = "text"
	ReportFormatPDF  = "pdf"
)

// Default возвращает конфигурацию минимальной версии: четыре вопроса, пересечение слов, 5/2 балла
func Default() *Config {
	th := scoring.DefaultThresholds()
	return &Config{
		InterviewConfig: InterviewConfig{
			Scorer:       scoring.LexicalName,
			Threshold:    th.Threshold,
			HighScore:    th.High,
			LowScore:     th.Low,
			MaxBonus:     th.MaxBonus,
			AllowReview:  true,
			ReportFormat: ReportFormatText,
			OutputsDir:   "output",
		},
		Questions: question.Default().All(),
	}
}

// Thresholds пороги оценки из секции interview_config
func (c *Config) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{
		Threshold: c.InterviewConfig.Threshold,
		High:      c.InterviewConfig.HighScore,
		Low:       c.InterviewConfig.LowScore,
		MaxBonus:  c.InterviewConfig.MaxBonus,
	}
}

func (c *Config) Bank() (*question.Bank, error) {
	return question.New(c.Questions)
}
