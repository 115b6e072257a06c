// Package inspect walks a document tree and reports which .tex sources
// still carry unresolved latexdiff annotations.
package inspect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/texrev/texrev/internal/sentinel"
)

// Extension is the document source extension the inspector looks for.
const Extension = ".tex"

// ErrNoFilesFound indicates the root directory holds no document sources
// at all. Zero files with spans is a normal empty result, not this error.
var ErrNoFilesFound = errors.New("no .tex files found")

// FileStatus describes one document file with unresolved spans.
type FileStatus struct {
	Path string
	Adds int
	Dels int
}

// ListFiles returns every document source under root in deterministic
// (lexical walk) order, de-duplicated. Returns ErrNoFilesFound when the
// tree has no document sources.
func ListFiles(root string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), Extension) {
			return nil
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFilesFound, root)
	}
	return files, nil
}

// Unresolved returns the files under root that still contain at least one
// add or del span, with per-file counts. Content inside the latexdiff
// preamble block is excluded from consideration. The result is empty (and
// err nil) when every file is clean; ErrNoFilesFound still applies when
// there are no document sources at all.
func Unresolved(root string) ([]FileStatus, error) {
	files, err := ListFiles(root)
	if err != nil {
		return nil, err
	}

	var unresolved []FileStatus
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		adds, dels := sentinel.CountSpans(string(data))
		if adds > 0 || dels > 0 {
			unresolved = append(unresolved, FileStatus{Path: path, Adds: adds, Dels: dels})
		}
	}
	return unresolved, nil
}
