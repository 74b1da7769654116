package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"interview-practice/internal/scoring"
)

// Load загружает конфигурацию из YAML файла. Поля, которых нет в файле, берутся из Default.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	return Parse(data)
}

// LoadOrDefault как Load, но без файла возвращает Default
func LoadOrDefault(filename string) (*Config, error) {
	cfg, err := Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse разбирает YAML поверх конфигурации по умолчанию
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	// Валидация конфигурации
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if len(config.Questions) == 0 {
		return fmt.Errorf("questions must not be empty")
	}

	for i, q := range config.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
	}

	ic := config.InterviewConfig
	switch ic.Scorer {
	case scoring.LexicalName, scoring.VectorName:
	default:
		return fmt.Errorf("scorer must be %q or %q, got %q", scoring.LexicalName, scoring.VectorName, ic.Scorer)
	}

	if err := config.Thresholds().Validate(); err != nil {
		return err
	}

	switch ic.ReportFormat {
	case ReportFormatText, ReportFormatPDF:
	default:
		return fmt.Errorf("report_format must be %q or %q, got %q", ReportFormatText, ReportFormatPDF, ic.ReportFormat)
	}

	if ic.OutputsDir == "" {
		return fmt.Errorf("outputs_dir must not be empty")
	}

	return nil
}
