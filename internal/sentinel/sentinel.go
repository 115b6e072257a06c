// Package sentinel defines the latexdiff marker grammar: the token
// patterns that bracket additions, deletions, and the injected preamble
// block, plus helpers to locate and strip them.
package sentinel

import "regexp"

// Kind identifies one of the six sentinel tokens latexdiff leaves in an
// annotated document.
type Kind int

const (
	PreambleBegin Kind = iota
	PreambleEnd
	AddBegin
	AddEnd
	DelBegin
	DelEnd
)

// String returns a short human-readable name for the token kind.
func (k Kind) String() string {
	switch k {
	case PreambleBegin:
		return "preamble-begin"
	case PreambleEnd:
		return "preamble-end"
	case AddBegin:
		return "add-begin"
	case AddEnd:
		return "add-end"
	case DelBegin:
		return "del-begin"
	case DelEnd:
		return "del-end"
	default:
		return "unknown"
	}
}

// IsAdd reports whether the kind belongs to an addition span.
func (k Kind) IsAdd() bool { return k == AddBegin || k == AddEnd }

// Begin tokens swallow their trailing whitespace so span content starts
// right at the inline wrapper macro. End tokens stop at the marker
// itself; whatever spacing follows stays with the surrounding text.
var (
	reAddBegin = regexp.MustCompile(`\\DIFaddbegin\s*`)
	reAddEnd   = regexp.MustCompile(`\\DIFaddend`)
	reDelBegin = regexp.MustCompile(`\\DIFdelbegin\s*`)
	reDelEnd   = regexp.MustCompile(`\\DIFdelend`)

	rePreambleBegin = regexp.MustCompile(`%DIF PREAMBLE EXTENSION ADDED BY LATEXDIFF`)
	rePreambleEnd   = regexp.MustCompile(`%DIF END PREAMBLE EXTENSION ADDED BY LATEXDIFF\n`)

	// Greedy across the whole document: a second end marker extends the
	// block to the last one. Known limitation, inherited from latexdiff's
	// own convention of emitting exactly one preamble block.
	rePreambleBlock = regexp.MustCompile(`(?s)%DIF PREAMBLE EXTENSION ADDED BY LATEXDIFF.*%DIF END PREAMBLE EXTENSION ADDED BY LATEXDIFF\n`)

	reAddMacro = regexp.MustCompile(`(?s)\\DIFadd\{(.*?)\}`)
	reDelMacro = regexp.MustCompile(`(?s)\\DIFdel\{(.*?)\}`)
)

// Token is one matched sentinel occurrence. Start and End are absolute
// byte offsets into the scanned text; End is exclusive and, for begin
// tokens, includes the trailing whitespace the pattern swallows.
type Token struct {
	Kind  Kind
	Start int
	End   int
}

// Next returns the nearest upcoming region opener (preamble, add, or del
// begin) at or after cursor. A preamble opener wins only when it is
// strictly nearer than both span openers. The second return is false when
// no opener remains, which is also the answer when the add and del
// positions tie (both absent).
func Next(text string, cursor int) (Token, bool) {
	rest := text[cursor:]
	eof := len(rest)

	pre, add, del := eof, eof, eof
	var preEnd, addEnd, delEnd int

	if loc := rePreambleBegin.FindStringIndex(rest); loc != nil {
		pre, preEnd = loc[0], loc[1]
	}
	if loc := reAddBegin.FindStringIndex(rest); loc != nil {
		add, addEnd = loc[0], loc[1]
	}
	if loc := reDelBegin.FindStringIndex(rest); loc != nil {
		del, delEnd = loc[0], loc[1]
	}

	if pre < add && pre < del {
		return Token{Kind: PreambleBegin, Start: cursor + pre, End: cursor + preEnd}, true
	}
	if add == del {
		// Only possible when neither span opener exists.
		return Token{}, false
	}
	if del < add {
		return Token{Kind: DelBegin, Start: cursor + del, End: cursor + delEnd}, true
	}
	return Token{Kind: AddBegin, Start: cursor + add, End: cursor + addEnd}, true
}

// MatchEnd locates the end token that closes the region opened by kind,
// searching at or after from. For add/del spans this is the first end
// marker of the same kind; for the preamble block it is the last end
// marker in the document, mirroring the greedy block pattern.
func MatchEnd(kind Kind, text string, from int) (Token, bool) {
	rest := text[from:]

	var loc []int
	var endKind Kind
	switch kind {
	case AddBegin:
		loc = reAddEnd.FindStringIndex(rest)
		endKind = AddEnd
	case DelBegin:
		loc = reDelEnd.FindStringIndex(rest)
		endKind = DelEnd
	case PreambleBegin:
		all := rePreambleEnd.FindAllStringIndex(rest, -1)
		if len(all) > 0 {
			loc = all[len(all)-1]
		}
		endKind = PreambleEnd
	default:
		return Token{}, false
	}

	if loc == nil {
		return Token{}, false
	}
	return Token{Kind: endKind, Start: from + loc[0], End: from + loc[1]}, true
}

// StripMarkup removes the inline \DIFadd{...} or \DIFdel{...} wrapper
// from span content, keeping only the wrapped argument. Content without a
// recognizable wrapper passes through untouched.
func StripMarkup(kind Kind, inner string) string {
	if kind.IsAdd() {
		return reAddMacro.ReplaceAllString(inner, "$1")
	}
	return reDelMacro.ReplaceAllString(inner, "$1")
}

// StripPreamble removes the latexdiff preamble block from a document.
func StripPreamble(text string) string {
	return rePreambleBlock.ReplaceAllString(text, "")
}

// CountSpans reports the number of add and del span openers remaining in
// the document, excluding anything inside the preamble block.
func CountSpans(text string) (adds, dels int) {
	body := StripPreamble(text)
	adds = len(reAddBegin.FindAllStringIndex(body, -1))
	dels = len(reDelBegin.FindAllStringIndex(body, -1))
	return adds, dels
}

// HasSpans reports whether the document still carries unresolved add or
// del spans outside the preamble block.
func HasSpans(text string) bool {
	adds, dels := CountSpans(text)
	return adds > 0 || dels > 0
}
