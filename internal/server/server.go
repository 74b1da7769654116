package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"interview-practice/internal/config"
)

type Server struct {
	http    *http.Server
	handler *Handler
	timeout time.Duration
	log     logrus.FieldLogger
}

func New(cfg config.ServerConfig, h *Handler) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h.Routes(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: h,
		timeout: cfg.ShutdownTimeout,
		log:     h.log,
	}
}

// Run слушает порт до отмены контекста, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	s.handler.StartCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("server starting")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.log.Info("shutting down server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
