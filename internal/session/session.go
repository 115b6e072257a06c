// Package session drives the resolution engine across the queue of
// annotated files: one file at a time, one span at a time, until the
// queue empties or the reviewer quits.
package session

import (
	"context"
	"fmt"
	"os"

	"github.com/texrev/texrev/internal/engine"
	"github.com/texrev/texrev/internal/inspect"
	"github.com/texrev/texrev/internal/output"
	"github.com/texrev/texrev/internal/sentinel"
)

// Prompter supplies the interactive answers a session needs: the per-span
// decision and the quit-time choice about keeping partial work.
type Prompter interface {
	engine.DecisionProvider
	ConfirmPartialSave(file string) (bool, error)
}

// Recorder persists decisions for the history log. Recording is
// best-effort: a failing recorder must not lose interactive work.
type Recorder interface {
	RecordDecision(ctx context.Context, file string, kind engine.SpanKind, action engine.Action, content string) error
}

// Summary reports what a session did.
type Summary struct {
	// FilesQueued is the size of the initial work queue.
	FilesQueued int
	// Modified lists files written during the session, fully or partially
	// resolved. Files are added only after a successful write.
	Modified []string
	// SpansResolved counts accepted/rejected spans across all files.
	SpansResolved int
	// Quit is true when the reviewer ended the session early. A quit
	// abandons the whole remaining queue, not just the current file.
	Quit bool
	// FullyResolved is true when the end-of-session inspection found no
	// unresolved spans anywhere under the root. Only then were preamble
	// blocks stripped.
	FullyResolved bool
	// Remaining lists files that still carry unresolved spans.
	Remaining []inspect.FileStatus
}

// Controller owns the session state: the work queue, the per-file dirty
// flag, and the modified-files list. Nothing else mutates these.
type Controller struct {
	Root     string
	UI       *output.UI
	Prompter Prompter
	Recorder Recorder // optional
}

// Run processes every file under the root that has unresolved spans.
// It returns an error without touching the file for any document the
// engine cannot fully parse.
func (c *Controller) Run(ctx context.Context) (*Summary, error) {
	queue, err := inspect.Unresolved(c.Root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{FilesQueued: len(queue)}

	for _, item := range queue {
		data, err := os.ReadFile(item.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", item.Path, err)
		}
		text := string(data)

		c.UI.Info("Working on file: %s", output.Cyan(item.Path))

		dirty := false
		provider := &recordingProvider{
			ctx:      ctx,
			inner:    c.Prompter,
			recorder: c.Recorder,
			ui:       c.UI,
			dirty:    &dirty,
		}

		res, err := engine.Resolve(item.Path, text, provider)
		if err != nil {
			return nil, err
		}
		summary.SpansResolved += res.Resolved

		if res.TerminatedEarly {
			summary.Quit = true
			if dirty {
				save, err := c.Prompter.ConfirmPartialSave(item.Path)
				if err != nil {
					return nil, err
				}
				if save {
					// Resolved prefix plus the untouched remainder: bytes
					// are never lost on a partial save, only decisions are
					// deferred.
					partial := res.Output + text[res.Cursor:]
					if err := c.writeFile(item.Path, partial, summary); err != nil {
						return nil, err
					}
				}
			}
			break
		}

		if err := c.writeFile(item.Path, res.Output, summary); err != nil {
			return nil, err
		}
	}

	if err := c.finalize(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// writeFile persists resolved text and records the file as modified.
// The modified list is appended only after the write succeeds, so a crash
// mid-write never reports a file as resolved when it was not persisted.
func (c *Controller) writeFile(path, text string, summary *Summary) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	summary.Modified = append(summary.Modified, path)
	return nil
}

// finalize runs once per session, whether it ended by quit or by queue
// exhaustion: re-inspect the tree, and strip preamble blocks from the
// modified files only when the entire set is clean. One remaining span
// anywhere blocks stripping everywhere.
func (c *Controller) finalize(summary *Summary) error {
	remaining, err := inspect.Unresolved(c.Root)
	if err != nil {
		return err
	}
	summary.Remaining = remaining

	if len(remaining) > 0 {
		c.UI.Warning("Unresolved annotations remain; keeping preamble blocks in place:")
		for _, item := range remaining {
			c.UI.Warning("  %s (%d additions, %d deletions)", item.Path, item.Adds, item.Dels)
		}
		return nil
	}

	summary.FullyResolved = true
	for _, path := range summary.Modified {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		stripped := sentinel.StripPreamble(string(data))
		if stripped == string(data) {
			continue
		}
		if err := os.WriteFile(path, []byte(stripped), 0644); err != nil {
			return fmt.Errorf("strip preamble from %s: %w", path, err)
		}
		c.UI.VerboseLog("Stripped preamble block from %s", path)
	}
	return nil
}

// recordingProvider wraps the prompter: it flips the session dirty flag
// on every accept/reject and forwards the decision to the recorder.
type recordingProvider struct {
	ctx      context.Context
	inner    Prompter
	recorder Recorder
	ui       *output.UI
	dirty    *bool
}

func (p *recordingProvider) Decide(span engine.Span) (engine.Action, error) {
	action, err := p.inner.Decide(span)
	if err != nil || action == engine.Quit {
		return action, err
	}

	*p.dirty = true
	if p.recorder != nil {
		if err := p.recorder.RecordDecision(p.ctx, span.File, span.Kind, action, span.Content); err != nil {
			p.ui.Warning("Could not record decision: %v", err)
		}
	}
	return action, nil
}
