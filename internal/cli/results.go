package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"interview-practice/internal/config"
	"interview-practice/internal/report"
	"interview-practice/internal/storage"
)

func newResultsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "results [id]",
		Short: "List archived interviews or show one by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				return err
			}
			sink := storage.NewSink(cfg.InterviewConfig.OutputsDir)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				res, err := sink.LoadResult(args[0])
				if err != nil {
					return err
				}
				art, err := report.TextRenderer{}.Render(res.Report())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s  %s  %s", res.InterviewID, res.Timestamp, res.Duration)))
				fmt.Fprint(out, string(art.Data))
				return nil
			}

			ids, err := sink.ListResults()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No archived interviews in "+sink.Dir()))
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}
