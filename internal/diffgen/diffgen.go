// Package diffgen reconciles two git revisions of a document tree into
// annotated sources: it snapshots the union of .tex files from both
// revisions on work branches, runs latexdiff per file, and leaves the
// annotated versions on a dedicated branch for review.
package diffgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/texrev/texrev/internal/git"
	"github.com/texrev/texrev/internal/inspect"
	"github.com/texrev/texrev/internal/latex"
	"github.com/texrev/texrev/internal/output"
)

// Options configures one diff generation run.
type Options struct {
	RepoPath       string
	Subdir         string
	Rev1           string
	Rev2           string
	MarkupType     string
	ExcludeTextcmd string
}

// Result reports the branches created and the files annotated.
type Result struct {
	Rev1Branch      string
	Rev2Branch      string
	AnnotatedBranch string
	Files           []string
}

// Generator drives the git and latexdiff collaborators.
type Generator struct {
	Git    git.Client
	Differ latex.Differ
	UI     *output.UI

	// now stamps the work branch names; overridable in tests.
	now func() time.Time
}

// New returns a Generator over the given collaborators.
func New(gc git.Client, differ latex.Differ, ui *output.UI) *Generator {
	return &Generator{Git: gc, Differ: differ, UI: ui, now: time.Now}
}

// Run produces annotated sources for the changes between Rev1 and Rev2.
// On success the repository is left on the annotated branch with every
// document file rewritten to its sentinel-marked form; committing is the
// caller's concern.
func (g *Generator) Run(opts Options) (*Result, error) {
	stamp := g.now().Format("200601021504")
	res := &Result{
		Rev1Branch:      stamp + "-texrev-rev1",
		Rev2Branch:      stamp + "-texrev-rev2",
		AnnotatedBranch: stamp + "-texrev-annotated",
	}
	docDir := filepath.Join(opts.RepoPath, opts.Subdir)

	// Union the file sets of both revisions: a file absent in one
	// revision is diffed against an empty placeholder.
	g.UI.Info("Generating full file list.")
	if err := g.Git.CheckoutNew(opts.RepoPath, res.Rev1Branch, opts.Rev1); err != nil {
		return nil, fmt.Errorf("checkout %s at %s: %w", res.Rev1Branch, opts.Rev1, err)
	}
	files1, err := inspect.ListFiles(docDir)
	if err != nil {
		return nil, err
	}

	if err := g.Git.CheckoutNew(opts.RepoPath, res.Rev2Branch, opts.Rev2); err != nil {
		return nil, fmt.Errorf("checkout %s at %s: %w", res.Rev2Branch, opts.Rev2, err)
	}
	files2, err := inspect.ListFiles(docDir)
	if err != nil {
		return nil, err
	}

	res.Files = union(files1, files2)
	g.UI.VerboseLog("File list: %s", strings.Join(res.Files, ", "))

	// Snapshot revision 1 under per-revision names.
	g.UI.Info("Checking out revision 1: %s", output.Cyan(opts.Rev1))
	if err := g.Git.Checkout(opts.RepoPath, res.Rev1Branch); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", res.Rev1Branch, err)
	}
	rev1Files, err := snapshot(res.Files, opts.Rev1)
	if err != nil {
		return nil, err
	}

	// Back to revision 2; the reset restores the files the renames
	// removed from the tree.
	g.UI.Info("Checking out revision 2: %s", output.Cyan(opts.Rev2))
	if err := g.Git.Checkout(opts.RepoPath, res.Rev2Branch); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", res.Rev2Branch, err)
	}
	if err := g.Git.ResetHard(opts.RepoPath); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	g.UI.Info("Checking out branch to save changes.")
	if err := g.Git.CheckoutNew(opts.RepoPath, res.AnnotatedBranch, res.Rev2Branch); err != nil {
		return nil, fmt.Errorf("checkout %s: %w", res.AnnotatedBranch, err)
	}
	rev2Files, err := snapshot(res.Files, opts.Rev2)
	if err != nil {
		return nil, err
	}

	// Annotate each file pair and put the result where the original was.
	for i, file := range res.Files {
		g.UI.VerboseLog("latexdiff %s %s", rev1Files[i], rev2Files[i])
		annotated, err := g.Differ.Annotate(rev1Files[i], rev2Files[i], opts.MarkupType, opts.ExcludeTextcmd)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(file, []byte(annotated), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", file, err)
		}
		if err := os.Remove(rev1Files[i]); err != nil {
			return nil, fmt.Errorf("remove %s: %w", rev1Files[i], err)
		}
		if err := os.Remove(rev2Files[i]); err != nil {
			return nil, fmt.Errorf("remove %s: %w", rev2Files[i], err)
		}
	}

	return res, nil
}

// union merges two file lists, de-duplicated and sorted.
func union(a, b []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, f := range append(append([]string{}, a...), b...) {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}
	sort.Strings(merged)
	return merged
}

// revName derives the per-revision snapshot name for a document file.
func revName(file, rev string) string {
	return strings.TrimSuffix(file, inspect.Extension) + "-" + rev + inspect.Extension
}

// snapshot renames every file to its per-revision name, creating an
// empty placeholder for files the current revision does not have.
func snapshot(files []string, rev string) ([]string, error) {
	revFiles := make([]string, len(files))
	for i, file := range files {
		revFiles[i] = revName(file, rev)
		if _, err := os.Stat(file); os.IsNotExist(err) {
			if err := os.WriteFile(file, nil, 0644); err != nil {
				return nil, fmt.Errorf("create placeholder %s: %w", file, err)
			}
		}
		if err := os.Rename(file, revFiles[i]); err != nil {
			return nil, fmt.Errorf("rename %s: %w", file, err)
		}
	}
	return revFiles, nil
}
