package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/texrev/texrev/internal/engine"
	"github.com/texrev/texrev/internal/git"
	"github.com/texrev/texrev/internal/latex"
	"github.com/texrev/texrev/internal/models"
	"github.com/texrev/texrev/internal/session"
	"github.com/texrev/texrev/internal/store"
)

var reviseCmd = &cobra.Command{
	Use:   "revise",
	Short: "Interactively accept or reject annotated changes",
	Long: `Step through every annotated change under the source directory and
accept or reject it. Quit ends the whole session; a partially revised
file can be saved and picked up again later.

TIP: to accept everything, check out the rev2 branch instead.
TIP: to reject everything, check out the rev1 branch instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviseRun(cmd.Context())
	},
}

func init() {
	reviseCmd.Flags().StringP("main", "m", "", "Main file, used to build the final PDF")
	reviseCmd.Flags().StringP("subdir", "s", "", "Subdirectory holding the sources")
	_ = viper.BindPFlag("main", reviseCmd.Flags().Lookup("main"))
	_ = viper.BindPFlag("subdir", reviseCmd.Flags().Lookup("subdir"))
	rootCmd.AddCommand(reviseCmd)
}

// storeRecorder adapts the history store to the session.Recorder
// interface.
type storeRecorder struct {
	store     store.Store
	sessionID string
}

func (r *storeRecorder) RecordDecision(ctx context.Context, file string, kind engine.SpanKind, action engine.Action, content string) error {
	return r.store.CreateDecision(ctx, &models.Decision{
		SessionID: r.sessionID,
		File:      file,
		Kind:      kind.String(),
		Action:    action.String(),
		Content:   content,
	})
}

func reviseRun(ctx context.Context) error {
	gc := git.NewClient()
	if err := preflight(gc); err != nil {
		return err
	}

	subdir := viper.GetString("subdir")
	mainFile := viper.GetString("main")

	if dryRun {
		ui.DryRunMsg("Would start an interactive revise session under %s", subdir)
		return nil
	}

	// History recording is best effort: a broken database must not block
	// a review session.
	var recorder session.Recorder
	var sess *models.Session
	s, err := getStore()
	if err != nil {
		ui.Warning("History disabled: %v", err)
	} else {
		sess = &models.Session{Root: subdir}
		if err := s.CreateSession(ctx, sess); err != nil {
			ui.Warning("History disabled: %v", err)
			sess = nil
		} else {
			recorder = &storeRecorder{store: s, sessionID: sess.ID}
		}
	}

	controller := &session.Controller{
		Root:     subdir,
		UI:       ui,
		Prompter: session.NewTerminalPrompter(ui),
		Recorder: recorder,
	}

	summary, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	if sess != nil {
		sess.FilesQueued = summary.FilesQueued
		sess.FilesResolved = len(summary.Modified)
		sess.Quit = summary.Quit
		if err := s.FinishSession(ctx, sess); err != nil {
			ui.Warning("Could not record session: %v", err)
		}
	}

	if len(summary.Modified) == 0 {
		ui.Info("No changes made.")
		return nil
	}

	if viper.GetBool("build.pdf") {
		ui.Info("Building accepted.pdf")
		if err := latex.NewTools().BuildPDF(subdir, mainFile, "accepted"); err != nil {
			ui.Warning("PDF build failed: %v", err)
		}
	}

	if err := gc.AddAll("."); err != nil {
		return err
	}
	if err := gc.Commit(".", "Save after going through changes"); err != nil {
		return err
	}

	ui.Success("Resolved %d spans across %d files and committed.", summary.SpansResolved, len(summary.Modified))
	if summary.FullyResolved {
		ui.Info("All annotations resolved; preamble blocks stripped. You can merge this branch.")
	} else {
		ui.Warning("Some annotations remain; run 'texrev revise' again to finish.")
	}
	return nil
}
