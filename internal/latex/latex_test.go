package latex

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotate_MissingBinary(t *testing.T) {
	if _, err := exec.LookPath("latexdiff"); err == nil {
		t.Skip("latexdiff installed; this test covers the missing-binary path")
	}
	tools := NewTools()
	_, err := tools.Annotate("a.tex", "b.tex", "UNDERLINE", "")
	assert.Error(t, err)
}

func TestAnnotate_RealTool(t *testing.T) {
	if _, err := exec.LookPath("latexdiff"); err != nil {
		t.Skip("latexdiff not installed")
	}

	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.tex")
	newFile := filepath.Join(dir, "new.tex")
	require.NoError(t, os.WriteFile(oldFile, []byte("\\documentclass{article}\n\\begin{document}\nold words\n\\end{document}\n"), 0644))
	require.NoError(t, os.WriteFile(newFile, []byte("\\documentclass{article}\n\\begin{document}\nnew words\n\\end{document}\n"), 0644))

	tools := NewTools()
	out, err := tools.Annotate(oldFile, newFile, "UNDERLINE", "")
	require.NoError(t, err)
	assert.Contains(t, out, "\\DIFdel")
	assert.Contains(t, out, "\\DIFadd")
}

func TestCheckTools_ReportsOnlyMissing(t *testing.T) {
	orig := requiredTools
	requiredTools = []string{"git", "texrev-no-such-binary"}
	defer func() { requiredTools = orig }()

	err := CheckTools()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "texrev-no-such-binary")
	assert.NotContains(t, err.Error(), "git,")
}
