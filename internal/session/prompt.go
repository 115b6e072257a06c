package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/texrev/texrev/internal/engine"
	"github.com/texrev/texrev/internal/output"
)

// TerminalPrompter asks for decisions on the terminal, one span at a
// time. Invalid input re-prompts without any state change.
type TerminalPrompter struct {
	UI *output.UI

	reader *bufio.Reader
}

// NewTerminalPrompter returns a prompter reading from stdin.
func NewTerminalPrompter(ui *output.UI) *TerminalPrompter {
	return NewTerminalPrompterFrom(ui, os.Stdin)
}

// NewTerminalPrompterFrom returns a prompter reading from in. Used by
// tests to script input.
func NewTerminalPrompterFrom(ui *output.UI, in io.Reader) *TerminalPrompter {
	return &TerminalPrompter{UI: ui, reader: bufio.NewReader(in)}
}

// Decide shows the span and blocks until the reviewer answers
// accept, reject, or quit.
func (p *TerminalPrompter) Decide(span engine.Span) (engine.Action, error) {
	fmt.Fprintf(p.UI.Out, "\nFile under revision: %s\n", output.Cyan(span.File))

	if span.Kind == engine.Addition {
		fmt.Fprintf(p.UI.Out, "Addition found:\n+++\n%s\n+++\n", output.Green(span.Content))
	} else {
		fmt.Fprintf(p.UI.Out, "Deletion found:\n---\n%s\n---\n", output.Red(span.Content))
	}

	for {
		fmt.Fprint(p.UI.Out, "[a]ccept / [r]eject / [q]uit: ")
		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return engine.Quit, fmt.Errorf("read decision: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "a", "accept", "y":
			return engine.Accept, nil
		case "r", "reject", "n":
			return engine.Reject, nil
		case "q", "quit":
			return engine.Quit, nil
		default:
			fmt.Fprintln(p.UI.Out, "Invalid input. Try again.")
		}
	}
}

// ConfirmPartialSave asks whether to keep the partially revised file.
// Default is no.
func (p *TerminalPrompter) ConfirmPartialSave(file string) (bool, error) {
	for {
		fmt.Fprintf(p.UI.Out, "Save partially revised %s? [y/N]: ", output.Cyan(file))
		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.UI.Out, "Invalid input. Try again.")
		}
	}
}
