package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/texrev/texrev/internal/inspect"
	"github.com/texrev/texrev/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show files with unresolved annotations",
	Long: `List the document files under the source directory that still contain
unresolved latexdiff annotations, with per-file change counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	statusCmd.Flags().StringP("subdir", "s", "", "Subdirectory holding the sources")
	_ = viper.BindPFlag("subdir", statusCmd.Flags().Lookup("subdir"))
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	subdir := viper.GetString("subdir")

	unresolved, err := inspect.Unresolved(subdir)
	if err != nil {
		return err
	}

	if len(unresolved) == 0 {
		ui.Success("No unresolved annotations.")
		return nil
	}

	table := ui.Table([]string{"File", "Additions", "Deletions"})
	totalAdds, totalDels := 0, 0
	for _, f := range unresolved {
		_ = table.Append([]string{
			output.Cyan(f.Path),
			fmt.Sprintf("%d", f.Adds),
			fmt.Sprintf("%d", f.Dels),
		})
		totalAdds += f.Adds
		totalDels += f.Dels
	}
	_ = table.Render()

	ui.Info("%d files with %d additions and %d deletions to review", len(unresolved), totalAdds, totalDels)
	return nil
}
