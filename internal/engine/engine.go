// Package engine implements the resolution pass over one annotated
// document: a single forward scan that copies unchanged text, skips the
// preamble block, and asks a DecisionProvider what to do with every add
// and del span it encounters.
package engine

import (
	"fmt"

	"github.com/texrev/texrev/internal/sentinel"
)

// Action is the reviewer's answer for one span.
type Action int

const (
	// Accept applies the change: added text is kept, deleted text stays
	// deleted.
	Accept Action = iota
	// Reject ignores the change: added text is dropped, deleted text is
	// restored.
	Reject
	// Quit stops the whole session. Nothing from the current span onward
	// is resolved.
	Quit
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// SpanKind distinguishes additions from deletions.
type SpanKind int

const (
	Addition SpanKind = iota
	Deletion
)

// String returns the span kind name.
func (k SpanKind) String() string {
	if k == Addition {
		return "addition"
	}
	return "deletion"
}

// Span is the context handed to a DecisionProvider: which file, what kind
// of change, the changed text with its inline wrapper stripped, and a
// little preceding document text for orientation.
type Span struct {
	File    string
	Kind    SpanKind
	Content string
	Before  string
}

// DecisionProvider supplies the per-span decision. Implementations block
// until an answer is available; the terminal prompter in the session
// package is the interactive one, tests use scripted providers.
type DecisionProvider interface {
	Decide(span Span) (Action, error)
}

// DecisionFunc adapts a function to the DecisionProvider interface.
type DecisionFunc func(span Span) (Action, error)

// Decide calls f.
func (f DecisionFunc) Decide(span Span) (Action, error) { return f(span) }

// Result is the outcome of one resolution pass.
type Result struct {
	// Output is the resolved text accumulated so far. When
	// TerminatedEarly is false it is the complete resolved document.
	Output string
	// Cursor is the offset of the first unprocessed byte of the input.
	// Output + input[Cursor:] always reproduces the input's unresolved
	// tail without loss; on a quit the cursor sits at the start of the
	// span that was on offer, so a later pass re-offers it.
	Cursor int
	// TerminatedEarly is true when the provider answered Quit before the
	// document was fully consumed.
	TerminatedEarly bool
	// Resolved counts the spans that received an accept or reject.
	Resolved int
}

// MalformedSpanError reports a begin marker with no matching end marker.
// The document cannot be trusted past the orphan, so callers must not
// persist any output for the file.
type MalformedSpanError struct {
	File   string
	Kind   sentinel.Kind
	Offset int
}

func (e *MalformedSpanError) Error() string {
	return fmt.Sprintf("%s: %s marker at offset %d has no matching end marker", e.File, e.Kind, e.Offset)
}

// beforeWindow bounds the amount of preceding text shown with a span.
const beforeWindow = 120

// Resolve scans the document text of file in one forward pass, resolving
// every add/del span with a decision from provider. The preamble block is
// copied through verbatim without a decision; stripping it is a separate
// end-of-session concern. See Result for the quit contract.
func Resolve(file, text string, provider DecisionProvider) (Result, error) {
	var res Result
	out := make([]byte, 0, len(text))
	cursor := 0

	for {
		tok, ok := sentinel.Next(text, cursor)
		if !ok {
			out = append(out, text[cursor:]...)
			res.Output = string(out)
			res.Cursor = len(text)
			return res, nil
		}

		if tok.Kind == sentinel.PreambleBegin {
			end, ok := sentinel.MatchEnd(sentinel.PreambleBegin, text, tok.End)
			if !ok {
				return Result{}, &MalformedSpanError{File: file, Kind: tok.Kind, Offset: tok.Start}
			}
			out = append(out, text[cursor:end.End]...)
			cursor = end.End
			continue
		}

		end, ok := sentinel.MatchEnd(tok.Kind, text, tok.End)
		if !ok {
			return Result{}, &MalformedSpanError{File: file, Kind: tok.Kind, Offset: tok.Start}
		}

		out = append(out, text[cursor:tok.Start]...)
		content := sentinel.StripMarkup(tok.Kind, text[tok.End:end.Start])

		span := Span{
			File:    file,
			Content: content,
			Before:  beforeContext(string(out)),
		}
		if tok.Kind == sentinel.DelBegin {
			span.Kind = Deletion
		}

		action, err := provider.Decide(span)
		if err != nil {
			return Result{}, fmt.Errorf("decide span in %s: %w", file, err)
		}

		if action == Quit {
			res.Output = string(out)
			res.Cursor = tok.Start
			res.TerminatedEarly = true
			return res, nil
		}

		if keep(span.Kind, action) {
			out = append(out, content...)
		}
		res.Resolved++
		cursor = end.End
	}
}

// keep applies the kind x action truth table: accepting an addition or
// rejecting a deletion keeps the text, the other two drop it.
func keep(kind SpanKind, action Action) bool {
	if kind == Addition {
		return action == Accept
	}
	return action == Reject
}

// beforeContext returns the tail of the resolved output as display
// context for the next span.
func beforeContext(out string) string {
	if len(out) <= beforeWindow {
		return out
	}
	return out[len(out)-beforeWindow:]
}
