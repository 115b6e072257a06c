// Package latex wraps the external LaTeX tooling texrev drives: latexdiff
// for producing annotated sources and pdflatex for building documents.
package latex

import (
	"fmt"
	"os/exec"
	"strings"
)

// Differ produces an annotated document from two revisions of a file.
type Differ interface {
	Annotate(oldFile, newFile, markupType, excludeTextcmd string) (string, error)
}

// Builder compiles a LaTeX document to PDF.
type Builder interface {
	BuildPDF(dir, mainFile, jobname string) error
}

// Tools runs the real latexdiff and pdflatex binaries.
type Tools struct{}

// NewTools returns a Tools instance.
func NewTools() *Tools {
	return &Tools{}
}

// Annotate runs latexdiff over the two files and returns the annotated
// document text from stdout.
func (t *Tools) Annotate(oldFile, newFile, markupType, excludeTextcmd string) (string, error) {
	args := []string{
		"--type=" + markupType,
		"--exclude-textcmd=" + excludeTextcmd,
		oldFile,
		newFile,
	}
	out, err := exec.Command("latexdiff", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("latexdiff %s %s: %s", oldFile, newFile, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("latexdiff %s %s: %w", oldFile, newFile, err)
	}
	return string(out), nil
}

// BuildPDF runs pdflatex in batchmode inside dir. pdflatex exits nonzero
// on recoverable layout issues too, so callers typically warn rather than
// abort on error.
func (t *Tools) BuildPDF(dir, mainFile, jobname string) error {
	cmd := exec.Command("pdflatex", "-interaction", "batchmode", "-jobname="+jobname, mainFile)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pdflatex -jobname=%s %s: %w", jobname, mainFile, err)
	}
	return nil
}

// requiredTools are the external binaries the diff and revise flows need.
var requiredTools = []string{"git", "latexdiff", "pdflatex"}

// CheckTools verifies the external binaries are on PATH and reports every
// missing one in a single error.
func CheckTools() error {
	var missing []string
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required tools not found on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}
