package rendering

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDocument = `\documentclass{article}
\begin{document}
Hello, world.
\end{document}`

func requirePdflatex(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not installed, skipping compilation test")
	}
}

func TestCompileLaTeX_ValidDocument(t *testing.T) {
	requirePdflatex(t)

	tmpDir := t.TempDir()
	texPath := filepath.Join(tmpDir, "doc.tex")
	require.NoError(t, os.WriteFile(texPath, []byte(minimalDocument), 0644))

	pdfPath, logOutput, err := CompileLaTeX(context.Background(), texPath, tmpDir)
	require.NoError(t, err)
	assert.NotEmpty(t, logOutput)

	info, err := os.Stat(pdfPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCompileLaTeX_InvalidDocument(t *testing.T) {
	requirePdflatex(t)

	tmpDir := t.TempDir()
	texPath := filepath.Join(tmpDir, "broken.tex")
	// Missing \begin{document}
	require.NoError(t, os.WriteFile(texPath, []byte(`\documentclass{article}\end{document}`), 0644))

	_, _, err := CompileLaTeX(context.Background(), texPath, tmpDir)
	assert.Error(t, err)
	var compErr *CompilationError
	assert.ErrorAs(t, err, &compErr)
}

func TestCompileLaTeX_MissingSourceFile(t *testing.T) {
	requirePdflatex(t)

	tmpDir := t.TempDir()
	_, _, err := CompileLaTeX(context.Background(), filepath.Join(tmpDir, "missing.tex"), filepath.Join(tmpDir, "work"))
	assert.Error(t, err)
}

func TestExtractLaTeXError_FindsErrorLines(t *testing.T) {
	logOutput := `This is pdfTeX
! Undefined control sequence.
l.5 \badcommand
The control sequence was never defined.
Output written on doc.pdf`

	result := extractLaTeXError(logOutput)
	assert.Contains(t, result, "! Undefined control sequence.")
	assert.Contains(t, result, `\badcommand`)
}

func TestExtractLaTeXError_NoErrorLines(t *testing.T) {
	result := extractLaTeXError("everything is fine")
	assert.Contains(t, result, "Unknown LaTeX error")
}

func TestCleanAuxFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, ext := range []string{".aux", ".log", ".out"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "doc"+ext), []byte("x"), 0644))
	}
	keep := filepath.Join(tmpDir, "doc.tex")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0644))

	CleanAuxFiles(tmpDir, "doc")

	for _, ext := range []string{".aux", ".log", ".out"} {
		_, err := os.Stat(filepath.Join(tmpDir, "doc"+ext))
		assert.True(t, os.IsNotExist(err))
	}
	_, err := os.Stat(keep)
	assert.NoError(t, err)
}

func TestCountPDFPages_OnCompiledDocument(t *testing.T) {
	requirePdflatex(t)
	if _, err := exec.LookPath("pdfinfo"); err != nil {
		if _, err := exec.LookPath("gs"); err != nil {
			t.Skip("neither pdfinfo nor ghostscript installed, skipping page count test")
		}
	}

	tmpDir := t.TempDir()
	texPath := filepath.Join(tmpDir, "doc.tex")
	require.NoError(t, os.WriteFile(texPath, []byte(minimalDocument), 0644))

	pdfPath, _, err := CompileLaTeX(context.Background(), texPath, tmpDir)
	require.NoError(t, err)

	count, err := CountPDFPages(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountPDFPages_MissingFile(t *testing.T) {
	_, err := CountPDFPages("/nonexistent/file.pdf")
	assert.Error(t, err)
}
