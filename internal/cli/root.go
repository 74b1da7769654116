// Package cli команды interview-practice.
package cli

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/interview.yaml"

type rootOptions struct {
	configPath string
}

// Execute запускает корневую команду
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "interview-practice",
		Short: "Practice job interview questions and get scored answers",
		Long: `Interview practice walks through a fixed bank of interview questions,
scores each answer by its relevance to the question and produces
a text or PDF report at the end.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to interview.yaml")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newQuestionsCmd(opts),
		newResultsCmd(opts),
	)

	return root
}
