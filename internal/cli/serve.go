package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"interview-practice/internal/server"
)

type serveOptions struct {
	port int
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interview over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.env.Server
			if opts.port != 0 {
				cfg.Port = opts.port
			}

			h := server.NewHandler(server.Deps{
				NewSession:   a.newSession,
				Transcriber:  a.transcriber,
				Sink:         a.sink,
				Metrics:      a.metrics,
				Log:          a.log,
				ReportFormat: a.cfg.InterviewConfig.ReportFormat,
				RateLimit:    cfg.RateLimit,
				SessionTTL:   cfg.SessionTTL,
			})

			a.log.WithFields(logrus.Fields{
				"questions":  a.bank.Count(),
				"scorer":     a.strategy.Name(),
				"max_score":  a.bank.Count() * a.strategy.MaxPerQuestion(),
				"assistant":  a.assistant != nil,
				"transcribe": a.transcriber != nil,
			}).Info("configuration loaded")

			if err := server.New(cfg, h).Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (default from SERVER_PORT)")
	return cmd
}
