package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"interview-practice/internal/config"
)

func newQuestionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the configured interview questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(opts.configPath)
			if err != nil {
				return err
			}
			bank, err := cfg.Bank()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			th := cfg.Thresholds()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d questions, up to %d points each", bank.Count(), th.MaxPerQuestion())))
			for i, q := range bank.All() {
				fmt.Fprintf(out, "%d. %s\n", i+1, q)
			}
			return nil
		},
	}
}
