package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texrev/texrev/internal/sentinel"
)

// scripted returns a provider that replays actions in order and records
// the spans it was shown.
func scripted(t *testing.T, actions ...Action) (DecisionProvider, *[]Span) {
	t.Helper()
	seen := &[]Span{}
	i := 0
	return DecisionFunc(func(span Span) (Action, error) {
		*seen = append(*seen, span)
		require.Less(t, i, len(actions), "provider asked for more decisions than scripted")
		a := actions[i]
		i++
		return a, nil
	}), seen
}

func always(a Action) DecisionProvider {
	return DecisionFunc(func(Span) (Action, error) { return a, nil })
}

func TestResolve_NoTokensIsNoop(t *testing.T) {
	text := "\\documentclass{article}\nplain text, no annotations\n"
	res, err := Resolve("a.tex", text, always(Accept))
	require.NoError(t, err)
	assert.Equal(t, text, res.Output)
	assert.False(t, res.TerminatedEarly)
	assert.Equal(t, 0, res.Resolved)
}

func TestResolve_AddAccept(t *testing.T) {
	text := `A \DIFaddbegin \DIFadd{new text}\DIFaddend B`
	res, err := Resolve("a.tex", text, always(Accept))
	require.NoError(t, err)
	assert.Equal(t, "A new text B", res.Output)
	assert.Equal(t, 1, res.Resolved)
}

func TestResolve_AddReject(t *testing.T) {
	text := `A \DIFaddbegin \DIFadd{new text}\DIFaddend B`
	res, err := Resolve("a.tex", text, always(Reject))
	require.NoError(t, err)
	assert.Equal(t, "A  B", res.Output, "inner text dropped, surrounding literal text preserved")
}

func TestResolve_DelAcceptConfirmsDeletion(t *testing.T) {
	text := `X \DIFdelbegin \DIFdel{old}\DIFdelend Y`
	res, err := Resolve("a.tex", text, always(Accept))
	require.NoError(t, err)
	assert.Equal(t, "X  Y", res.Output)
}

func TestResolve_DelRejectRestoresText(t *testing.T) {
	text := `X \DIFdelbegin \DIFdel{old}\DIFdelend Y`
	res, err := Resolve("a.tex", text, always(Reject))
	require.NoError(t, err)
	assert.Equal(t, "X old Y", res.Output)
}

func TestResolve_SpanContextHandedToProvider(t *testing.T) {
	text := `intro \DIFdelbegin \DIFdel{removed words}\DIFdelend outro`
	provider, seen := scripted(t, Accept)

	_, err := Resolve("chapter.tex", text, provider)
	require.NoError(t, err)
	require.Len(t, *seen, 1)

	span := (*seen)[0]
	assert.Equal(t, "chapter.tex", span.File)
	assert.Equal(t, Deletion, span.Kind)
	assert.Equal(t, "removed words", span.Content)
	assert.Equal(t, "intro ", span.Before)
}

func TestResolve_SpansInDocumentOrder(t *testing.T) {
	text := `a \DIFaddbegin \DIFadd{one}\DIFaddend b \DIFdelbegin \DIFdel{two}\DIFdelend c \DIFaddbegin \DIFadd{three}\DIFaddend d`
	provider, seen := scripted(t, Accept, Reject, Accept)

	res, err := Resolve("a.tex", text, provider)
	require.NoError(t, err)
	require.Len(t, *seen, 3)
	assert.Equal(t, Addition, (*seen)[0].Kind)
	assert.Equal(t, Deletion, (*seen)[1].Kind)
	assert.Equal(t, Addition, (*seen)[2].Kind)
	// Accept add, reject del (restore), accept add.
	assert.Equal(t, "a one b two c three d", res.Output)
	assert.Equal(t, 3, res.Resolved)
}

func TestResolve_AdjacentSpansDoNotInteract(t *testing.T) {
	text := `p \DIFaddbegin \DIFadd{A}\DIFaddend \DIFdelbegin \DIFdel{D}\DIFdelend q`
	res, err := Resolve("a.tex", text, always(Accept))
	require.NoError(t, err)
	assert.Equal(t, "p A  q", res.Output)
	assert.Equal(t, 2, res.Resolved)
}

func TestResolve_PreambleCopiedVerbatimWithoutDecision(t *testing.T) {
	text := "\\documentclass{article}\n" +
		"%DIF PREAMBLE EXTENSION ADDED BY LATEXDIFF\n\\RequirePackage{color}\n" +
		"%DIF END PREAMBLE EXTENSION ADDED BY LATEXDIFF\n" +
		"body \\DIFaddbegin \\DIFadd{x}\\DIFaddend tail"
	provider, seen := scripted(t, Accept)

	res, err := Resolve("a.tex", text, provider)
	require.NoError(t, err)
	require.Len(t, *seen, 1, "preamble must not generate a decision")
	assert.Contains(t, res.Output, "%DIF PREAMBLE EXTENSION ADDED BY LATEXDIFF")
	assert.Contains(t, res.Output, "\\RequirePackage{color}")
	assert.True(t, strings.HasSuffix(res.Output, "body x tail"))
}

func TestResolve_QuitBeforeFirstDecisionRoundTrips(t *testing.T) {
	text := `head \DIFaddbegin \DIFadd{x}\DIFaddend tail`
	res, err := Resolve("a.tex", text, always(Quit))
	require.NoError(t, err)
	assert.True(t, res.TerminatedEarly)
	assert.Equal(t, 0, res.Resolved)
	assert.Equal(t, text, res.Output+text[res.Cursor:], "output plus remainder must reproduce the input")
}

func TestResolve_QuitLeavesRemainderRaw(t *testing.T) {
	text := `a \DIFaddbegin \DIFadd{one}\DIFaddend b \DIFdelbegin \DIFdel{two}\DIFdelend c`
	provider, _ := scripted(t, Accept, Quit)

	res, err := Resolve("a.tex", text, provider)
	require.NoError(t, err)
	assert.True(t, res.TerminatedEarly)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, "a one b ", res.Output)
	// Cursor parked at the start of the undecided span so it is offered
	// again next session.
	assert.Equal(t, `\DIFdelbegin \DIFdel{two}\DIFdelend c`, text[res.Cursor:])
}

func TestResolve_Idempotent(t *testing.T) {
	text := `a \DIFaddbegin \DIFadd{one}\DIFaddend b`
	first, err := Resolve("a.tex", text, always(Accept))
	require.NoError(t, err)

	second, err := Resolve("a.tex", first.Output, DecisionFunc(func(Span) (Action, error) {
		t.Fatal("fully resolved document must not offer spans")
		return Accept, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, first.Output, second.Output)
}

func TestResolve_MalformedAddSpan(t *testing.T) {
	text := `a \DIFaddbegin \DIFadd{one} b`
	_, err := Resolve("bad.tex", text, always(Accept))
	require.Error(t, err)

	var malformed *MalformedSpanError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "bad.tex", malformed.File)
	assert.Equal(t, sentinel.AddBegin, malformed.Kind)
	assert.Equal(t, 2, malformed.Offset)
}

func TestResolve_MalformedPreamble(t *testing.T) {
	text := "%DIF PREAMBLE EXTENSION ADDED BY LATEXDIFF\nnever closed"
	_, err := Resolve("bad.tex", text, always(Accept))

	var malformed *MalformedSpanError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, sentinel.PreambleBegin, malformed.Kind)
}

func TestResolve_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("terminal went away")
	_, err := Resolve("a.tex", `\DIFaddbegin \DIFadd{x}\DIFaddend`, DecisionFunc(func(Span) (Action, error) {
		return Accept, boom
	}))
	require.ErrorIs(t, err, boom)
}

func TestKeepTruthTable(t *testing.T) {
	assert.True(t, keep(Addition, Accept))
	assert.False(t, keep(Addition, Reject))
	assert.False(t, keep(Deletion, Accept))
	assert.True(t, keep(Deletion, Reject))
}

func TestActionAndKindStrings(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "quit", Quit.String())
	assert.Equal(t, "addition", Addition.String())
	assert.Equal(t, "deletion", Deletion.String())
}
