package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"interview-practice/internal/report"
	"interview-practice/internal/scoring"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

type runOptions struct {
	format string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive interview in the terminal",
		Long: `Asks each question in turn and scores the typed answer.

Commands:
  :prev           go back to the previous question
  :help <text>    ask the assistant about the current question
  :upload <path>  submit a UTF-8 text file as the answer
  :reset          start over
  :quit           leave without a report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			format := opts.format
			if format == "" {
				format = a.cfg.InterviewConfig.ReportFormat
			}
			return a.runInterview(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: text or pdf (default from config)")
	return cmd
}

// runInterview интерактивный цикл до завершения интервью или :quit
func (a *app) runInterview(ctx context.Context, in io.Reader, out io.Writer, format string) error {
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}

	s := a.newSession()
	a.metrics.IncrementInterviewsStarted()

	fmt.Fprintln(out, titleStyle.Render(report.Title))
	fmt.Fprintln(out, mutedStyle.Render("Type your answer and press Enter. :help <text> asks for a hint, :quit exits."))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		if s.IsComplete() {
			break
		}
		a.printQuestion(out, s)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			fmt.Fprintln(out, warnStyle.Render("Input closed before the interview was finished."))
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == ":quit":
			fmt.Fprintln(out, mutedStyle.Render("Interview abandoned."))
			return nil

		case line == ":prev":
			if err := s.Previous(); err != nil {
				fmt.Fprintln(out, warnStyle.Render(err.Error()))
			}

		case line == ":reset":
			s.Reset()
			a.metrics.IncrementInterviewsStarted()
			fmt.Fprintln(out, mutedStyle.Render("Starting over."))

		case line == ":help" || strings.HasPrefix(line, ":help "):
			a.help(ctx, out, s, strings.TrimSpace(strings.TrimPrefix(line, ":help")))

		case strings.HasPrefix(line, ":upload "):
			path := strings.TrimSpace(strings.TrimPrefix(line, ":upload "))
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Could not read %s: %v", path, err)))
				continue
			}
			rec, err := s.SubmitUpload(ctx, data)
			a.printSubmit(out, rec, err)

		default:
			rec, err := s.Submit(ctx, line)
			a.printSubmit(out, rec, err)
		}
	}

	return a.finish(out, s, renderer)
}

func (a *app) printQuestion(out io.Writer, s *session.Session) {
	st := s.Status()
	fmt.Fprintln(out)
	fmt.Fprintln(out, questionStyle.Render(fmt.Sprintf("[%d/%d] %s", st.Index+1, st.Total, st.Question)))

	if st.State == session.StateReviewing {
		if answer, rec, ok := s.Answer(st.Index); ok {
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("Current answer (%d / %d): %s", rec.Score, a.strategy.MaxPerQuestion(), answer)))
		}
	}
	fmt.Fprint(out, "> ")
}

func (a *app) printSubmit(out io.Writer, rec scoring.Record, err error) {
	switch {
	case errors.Is(err, session.ErrEmptyAnswer):
		a.metrics.IncrementEmptyAnswers()
		fmt.Fprintln(out, warnStyle.Render(err.Error()))
		return
	case err != nil:
		fmt.Fprintln(out, warnStyle.Render(err.Error()))
		return
	}

	a.metrics.ObserveAnswer(rec.Score)
	line := fmt.Sprintf("Relevance: %.2f  Score: %d / %d", rec.Relevance, rec.Score, a.strategy.MaxPerQuestion())
	if rec.Signal != "" {
		line += "  Emotion: " + rec.Signal
	}
	fmt.Fprintln(out, scoreStyle.Render(line))
}

func (a *app) help(ctx context.Context, out io.Writer, s *session.Session, prompt string) {
	turn, err := s.AskHelp(ctx, prompt)
	if err != nil {
		fmt.Fprintln(out, warnStyle.Render(err.Error()))
		return
	}
	a.metrics.IncrementHelpRequests()
	a.metrics.IncrementAPICall("assistant", !turn.Failed)

	for _, t := range s.RecentHelp(turn.Question) {
		fmt.Fprintln(out, mutedStyle.Render("you: "+t.Prompt))
		fmt.Fprintln(out, "assistant: "+t.Reply)
	}
}

func (a *app) finish(out io.Writer, s *session.Session, renderer report.Renderer) error {
	res, err := s.Finalize()
	if err != nil {
		return err
	}
	a.metrics.IncrementInterviewsCompleted()

	art, err := renderer.Render(report.FromResult(res))
	if err != nil {
		return err
	}
	path, err := a.sink.Save(art)
	if err != nil {
		return err
	}
	if err := a.sink.SaveResult(storage.NewResult(res)); err != nil {
		a.log.WithError(err).Warn("failed to archive result")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("Interview Completed\nYour Total Score: %d / %d", res.TotalScore, res.MaxScore)))
	fmt.Fprintln(out, mutedStyle.Render("Report saved to "+path))
	return nil
}
