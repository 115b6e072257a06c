package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/texrev/texrev/internal/diffgen"
	"github.com/texrev/texrev/internal/git"
	"github.com/texrev/texrev/internal/latex"
	"github.com/texrev/texrev/internal/output"
)

var (
	diffRev1 string
	diffRev2 string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Generate annotated changes between two revisions",
	Long: `Generate latexdiff-annotated sources for the changes between two git
revisions, build a diff PDF, and commit the annotated versions on a new
branch for review with 'texrev revise'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return diffRun()
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffRev1, "rev1", "r", "master^", "First revision to diff against")
	diffCmd.Flags().StringVarP(&diffRev2, "rev2", "t", "master", "Second revision to diff with")
	diffCmd.Flags().StringP("main", "m", "", "Main file, used to build the diff PDF")
	diffCmd.Flags().StringP("subdir", "s", "", "Subdirectory holding the sources")
	diffCmd.Flags().StringP("type", "p", "", "latexdiff markup type (see man latexdiff)")
	diffCmd.Flags().StringP("exclude", "e", "", "latexdiff --exclude-textcmd value")
	_ = viper.BindPFlag("main", diffCmd.Flags().Lookup("main"))
	_ = viper.BindPFlag("subdir", diffCmd.Flags().Lookup("subdir"))
	_ = viper.BindPFlag("latexdiff.type", diffCmd.Flags().Lookup("type"))
	_ = viper.BindPFlag("latexdiff.exclude", diffCmd.Flags().Lookup("exclude"))
	rootCmd.AddCommand(diffCmd)
}

func diffRun() error {
	gc := git.NewClient()
	if err := preflight(gc); err != nil {
		return err
	}

	subdir := viper.GetString("subdir")
	mainFile := viper.GetString("main")

	if dryRun {
		ui.DryRunMsg("Would generate annotated diff between %s and %s", diffRev1, diffRev2)
		return nil
	}

	tools := latex.NewTools()
	gen := diffgen.New(gc, tools, ui)
	res, err := gen.Run(diffgen.Options{
		RepoPath:       ".",
		Subdir:         subdir,
		Rev1:           diffRev1,
		Rev2:           diffRev2,
		MarkupType:     viper.GetString("latexdiff.type"),
		ExcludeTextcmd: viper.GetString("latexdiff.exclude"),
	})
	if err != nil {
		return err
	}

	jobname := fmt.Sprintf("diff-%s-%s", diffRev1, diffRev2)
	if viper.GetBool("build.pdf") {
		ui.Info("Building %s.pdf", jobname)
		if err := tools.BuildPDF(subdir, mainFile, jobname); err != nil {
			ui.Warning("PDF build failed: %v", err)
		}
	}

	if err := gc.AddAll("."); err != nil {
		return err
	}
	msg := fmt.Sprintf("Save annotated changes between %s and %s", diffRev1, diffRev2)
	if err := gc.Commit(".", msg); err != nil {
		return err
	}

	ui.Success("Annotated %d files", len(res.Files))
	ui.Info("Branches created:")
	ui.Info("  %s: revision 1", output.Cyan(res.Rev1Branch))
	ui.Info("  %s: revision 2", output.Cyan(res.Rev2Branch))
	ui.Info("  %s: annotated sources and diff PDF", output.Cyan(res.AnnotatedBranch))
	ui.Info("Review with 'texrev revise' on branch %s", output.Cyan(res.AnnotatedBranch))
	return nil
}
