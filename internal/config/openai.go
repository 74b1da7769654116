package config

import (
	"fmt"
	"time"
)

type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Enabled ассистент доступен только при заданном ключе
func (c *OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// ValidateConfig проверяет корректность конфигурации
func (c *OpenAIConfig) ValidateConfig() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}

	return nil
}
