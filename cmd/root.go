package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/texrev/texrev/internal/git"
	"github.com/texrev/texrev/internal/latex"
	"github.com/texrev/texrev/internal/output"
	"github.com/texrev/texrev/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "texrev",
	Short: "Track and review LaTeX changes across git revisions",
	Long: `texrev helps LaTeX authors track, review, and apply changes made in
their source files. It only works when git is the version control system.

Expected workflow:
  1. Make changes, commit.
  2. 'texrev diff' generates annotated sources (and a diff PDF) between
     two git revisions using latexdiff, committed on a dedicated branch.
  3. 'texrev revise' steps through each change to accept or reject it,
     then rebuilds the PDF and commits.
  4. Merge the reviewed branch. Profit.

Requires git, latexdiff, and pdflatex on PATH.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/texrev/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "texrev")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TEXREV")
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "texrev")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "texrev.db"))
	viper.SetDefault("main", "main.tex")
	viper.SetDefault("subdir", ".")
	viper.SetDefault("latexdiff.type", "UNDERLINE")
	viper.SetDefault("latexdiff.exclude", "")
	viper.SetDefault("build.pdf", true)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// preflight verifies the external tools are present, the work tree is
// clean, and the configured main file exists. Run before any command
// that mutates the tree.
func preflight(gc git.Client) error {
	if err := latex.CheckTools(); err != nil {
		return err
	}

	clean, err := gc.IsClean(".")
	if err != nil {
		return err
	}
	if !clean {
		return fmt.Errorf("modified or untracked files found; stash or commit and rerun texrev")
	}

	subdir := viper.GetString("subdir")
	if _, err := os.Stat(subdir); err != nil {
		return fmt.Errorf("subdirectory %s not found", subdir)
	}
	mainFile := filepath.Join(subdir, viper.GetString("main"))
	if _, err := os.Stat(mainFile); err != nil {
		return fmt.Errorf("main file %s not found", mainFile)
	}
	return nil
}
