package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/texrev/texrev/internal/output"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show past revise sessions and their decisions",
	Long: `List past revise sessions, newest first. With a session id, show
every accept/reject decision recorded during that session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return historyDecisionsRun(args[0])
		}
		return historySessionsRun()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of sessions to list")
	rootCmd.AddCommand(historyCmd)
}

func historySessionsRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	ctx := rootCmd.Context()
	sessions, err := s.ListSessions(ctx, historyLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("No revise sessions recorded yet.")
		return nil
	}

	table := ui.Table([]string{"Session", "Started", "Root", "Queued", "Resolved", "Outcome"})
	for _, sess := range sessions {
		outcome := output.Green("completed")
		if sess.Quit {
			outcome = output.Yellow("quit early")
		}
		if sess.FinishedAt.IsZero() {
			outcome = output.Red("interrupted")
		}
		_ = table.Append([]string{
			output.Cyan(sess.ID),
			sess.StartedAt.Local().Format("2006-01-02 15:04"),
			sess.Root,
			fmt.Sprintf("%d", sess.FilesQueued),
			fmt.Sprintf("%d", sess.FilesResolved),
			outcome,
		})
	}
	_ = table.Render()

	ui.Info("Show decisions with 'texrev history <session-id>'")
	return nil
}

func historyDecisionsRun(sessionID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	ctx := rootCmd.Context()
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	decisions, err := s.ListDecisions(ctx, sess.ID)
	if err != nil {
		return err
	}

	ui.Info("Session %s started %s under %s", output.Cyan(sess.ID),
		sess.StartedAt.Local().Format("2006-01-02 15:04"), sess.Root)

	if len(decisions) == 0 {
		ui.Info("No decisions recorded for this session.")
		return nil
	}

	table := ui.Table([]string{"File", "Change", "Decision", "Content"})
	for _, d := range decisions {
		_ = table.Append([]string{
			d.File,
			output.KindColor(d.Kind),
			output.ActionColor(d.Action),
			truncate(d.Content, 60),
		})
	}
	_ = table.Render()
	return nil
}

// truncate shortens s for single-line table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
