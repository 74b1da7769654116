package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	OpenAI   OpenAIConfig
	Services ServicesConfig
	Redis    RedisConfig
	Server   ServerConfig
	Log      LogConfig
}

// ServicesConfig адреса локальных сервисов инференса; пустой адрес отключает сервис
type ServicesConfig struct {
	SimilarityURL string
	EmotionURL    string
	TranscribeURL string
	Timeout       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       int
	SessionTTL      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MAX_TOKENS", 400)
	v.SetDefault("OPENAI_TEMPERATURE", 0.7)
	v.SetDefault("OPENAI_TIMEOUT", 60*time.Second)

	v.SetDefault("SERVICES_TIMEOUT", 30*time.Second)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", 24*time.Hour)

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_RATE_LIMIT", 10)
	v.SetDefault("SERVER_SESSION_TTL", 24*time.Hour)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	return v
}

// LoadAppConfig читает настройки приложения из переменных окружения
func LoadAppConfig() *AppConfig {
	v := newViper()

	return &AppConfig{
		OpenAI: OpenAIConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			Model:       v.GetString("OPENAI_MODEL"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			MaxTokens:   v.GetInt("OPENAI_MAX_TOKENS"),
			Temperature: v.GetFloat64("OPENAI_TEMPERATURE"),
			Timeout:     v.GetDuration("OPENAI_TIMEOUT"),
		},
		Services: ServicesConfig{
			SimilarityURL: v.GetString("SIMILARITY_URL"),
			EmotionURL:    v.GetString("EMOTION_URL"),
			TranscribeURL: v.GetString("TRANSCRIBE_URL"),
			Timeout:       v.GetDuration("SERVICES_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			RateLimit:       v.GetInt("SERVER_RATE_LIMIT"),
			SessionTTL:      v.GetDuration("SERVER_SESSION_TTL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
