package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texrev/texrev/internal/engine"
	"github.com/texrev/texrev/internal/output"
)

func newPrompter(input string) (*TerminalPrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	ui := &output.UI{Out: out, ErrOut: &bytes.Buffer{}}
	return NewTerminalPrompterFrom(ui, strings.NewReader(input)), out
}

func addSpan() engine.Span {
	return engine.Span{File: "main.tex", Kind: engine.Addition, Content: "new words"}
}

func TestDecide_Accept(t *testing.T) {
	p, out := newPrompter("a\n")
	action, err := p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Accept, action)
	assert.Contains(t, out.String(), "main.tex")
	assert.Contains(t, out.String(), "Addition found")
	assert.Contains(t, out.String(), "new words")
}

func TestDecide_RejectAndQuit(t *testing.T) {
	p, _ := newPrompter("reject\nq\n")

	action, err := p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Reject, action)

	action, err = p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Quit, action)
}

func TestDecide_LegacyYesNoAnswers(t *testing.T) {
	p, _ := newPrompter("Y\nN\n")

	action, err := p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Accept, action)

	action, err = p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Reject, action)
}

func TestDecide_InvalidInputReprompts(t *testing.T) {
	p, out := newPrompter("maybe\nwhat\na\n")
	action, err := p.Decide(addSpan())
	require.NoError(t, err)
	assert.Equal(t, engine.Accept, action)
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid input"))
}

func TestDecide_DeletionShown(t *testing.T) {
	p, out := newPrompter("r\n")
	span := engine.Span{File: "ch1.tex", Kind: engine.Deletion, Content: "old words"}

	action, err := p.Decide(span)
	require.NoError(t, err)
	assert.Equal(t, engine.Reject, action)
	assert.Contains(t, out.String(), "Deletion found")
	assert.Contains(t, out.String(), "old words")
}

func TestDecide_EOF(t *testing.T) {
	p, _ := newPrompter("")
	_, err := p.Decide(addSpan())
	assert.Error(t, err)
}

func TestConfirmPartialSave(t *testing.T) {
	p, out := newPrompter("y\n")
	save, err := p.ConfirmPartialSave("main.tex")
	require.NoError(t, err)
	assert.True(t, save)
	assert.Contains(t, out.String(), "main.tex")
}

func TestConfirmPartialSave_DefaultsToNo(t *testing.T) {
	p, _ := newPrompter("\n")
	save, err := p.ConfirmPartialSave("main.tex")
	require.NoError(t, err)
	assert.False(t, save)
}

func TestConfirmPartialSave_InvalidReprompts(t *testing.T) {
	p, out := newPrompter("maybe\nyes\n")
	save, err := p.ConfirmPartialSave("main.tex")
	require.NoError(t, err)
	assert.True(t, save)
	assert.Contains(t, out.String(), "Invalid input")
}
