package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"interview-practice/internal/assistant"
	"interview-practice/internal/cache"
	"interview-practice/internal/clients"
	"interview-practice/internal/config"
	"interview-practice/internal/logging"
	"interview-practice/internal/metrics"
	"interview-practice/internal/question"
	"interview-practice/internal/scoring"
	"interview-practice/internal/server"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

// app собранные зависимости команды
type app struct {
	cfg         *config.Config
	env         *config.AppConfig
	log         *logrus.Logger
	metrics     *metrics.Metrics
	bank        *question.Bank
	strategy    scoring.Strategy
	assistant   session.Assistant
	transcriber server.Transcriber
	sink        *storage.Sink
	closers     []func() error
}

func newApp(ctx context.Context, configPath string, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	env := config.LoadAppConfig()

	log, err := logging.New(env.Log, logOut)
	if err != nil {
		return nil, err
	}

	bank, err := cfg.Bank()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		env:     env,
		log:     log,
		metrics: metrics.NewMetrics(),
		bank:    bank,
		sink:    storage.NewSink(cfg.InterviewConfig.OutputsDir),
	}

	h := clients.NewHTTP(env.Services.Timeout)

	if err := a.initStrategy(ctx, h); err != nil {
		a.Close()
		return nil, err
	}

	if env.OpenAI.Enabled() {
		if err := env.OpenAI.ValidateConfig(); err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid assistant configuration: %w", err)
		}
		a.assistant = assistant.New(env.OpenAI)
	} else {
		log.Info("OPENAI_API_KEY not set, help requests will not be answered")
	}

	if env.Services.TranscribeURL != "" {
		a.transcriber = clients.NewASRClient(h, env.Services.TranscribeURL)
	}

	return a, nil
}

func (a *app) initStrategy(ctx context.Context, h *clients.HTTP) error {
	var backend scoring.SimilarityBackend
	if url := a.env.Services.SimilarityURL; url != "" {
		backend = a.metrics.InstrumentSimilarity(clients.NewSimilarityClient(h, url))

		if a.env.Redis.Addr != "" {
			rdb, err := cache.NewClient(ctx, a.env.Redis)
			if err != nil {
				a.log.WithError(err).Warn("redis unavailable, similarity results will not be cached")
			} else {
				backend = cache.NewSimilarityCache(rdb, backend, a.env.Redis.TTL, a.log)
				a.closers = append(a.closers, rdb.Close)
			}
		}
	}

	opts := []scoring.Option{scoring.WithLogger(a.log)}
	if url := a.env.Services.EmotionURL; url != "" {
		bonus := &clients.EmotionBonus{
			Analyzer: clients.NewEmotionClient(h, url),
			Max:      a.cfg.InterviewConfig.MaxBonus,
		}
		opts = append(opts, scoring.WithBonus(a.metrics.InstrumentBonus(bonus)))
	}

	strategy, err := scoring.New(a.cfg.InterviewConfig.Scorer, a.cfg.Thresholds(), backend, opts...)
	if err != nil {
		return fmt.Errorf("failed to create scorer: %w", err)
	}
	a.strategy = strategy
	return nil
}

func (a *app) newSession() *session.Session {
	return session.New(a.bank, a.strategy,
		session.WithAssistant(a.assistant),
		session.WithReview(a.cfg.InterviewConfig.AllowReview),
		session.WithLogger(a.log),
	)
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
}
