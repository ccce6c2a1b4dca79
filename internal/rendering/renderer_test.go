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

// writeTestTemplate writes a minimal compilable template and returns its path.
func writeTestTemplate(t *testing.T, dir string) string {
	t.Helper()
	templatePath := filepath.Join(dir, "resume.tex")
	templateContent := `\documentclass{article}
\begin{document}
{{.Name}} | {{.Email}}
{{range .Experience}}{{.Company}}: {{range .Bullets}}{{.}} {{end}}
{{end}}\end{document}`
	require.NoError(t, os.WriteFile(templatePath, []byte(templateContent), 0644))
	return templatePath
}

func TestNewRenderer_CreatesOutputDirs(t *testing.T) {
	tmpDir := t.TempDir()
	r, err := NewRenderer(filepath.Join(tmpDir, "resume.tex"), filepath.Join(tmpDir, "output"))
	require.NoError(t, err)

	for _, dir := range []string{r.GeneratedDir(), r.PDFDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRenderer_RenderAndCompile(t *testing.T) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		t.Skip("pdflatex not installed, skipping render test")
	}

	tmpDir := t.TempDir()
	templatePath := writeTestTemplate(t, tmpDir)
	r, err := NewRenderer(templatePath, filepath.Join(tmpDir, "output"))
	require.NoError(t, err)

	pdfPath, pageCount, err := r.RenderAndCompile(context.Background(), testResume(), "resume_test_attempt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount)
	assert.Equal(t, filepath.Join(r.PDFDir(), "resume_test_attempt_1.pdf"), pdfPath)

	// The .tex source stays, compile artifacts do not
	_, err = os.Stat(filepath.Join(r.GeneratedDir(), "resume_test_attempt_1.tex"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(r.GeneratedDir(), "resume_test_attempt_1.aux"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(r.GeneratedDir(), "resume_test_attempt_1.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderer_RenderAndCompile_BadTemplate(t *testing.T) {
	tmpDir := t.TempDir()
	r, err := NewRenderer(filepath.Join(tmpDir, "missing.tex"), filepath.Join(tmpDir, "output"))
	require.NoError(t, err)

	_, _, err = r.RenderAndCompile(context.Background(), testResume(), "resume_x")
	assert.Error(t, err)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
}

func TestRenderer_FinalizeArtifact(t *testing.T) {
	tmpDir := t.TempDir()
	templatePath := writeTestTemplate(t, tmpDir)
	r, err := NewRenderer(templatePath, filepath.Join(tmpDir, "output"))
	require.NoError(t, err)

	// Stand in for an already-compiled attempt; finalize only copies bytes
	attemptPDF := filepath.Join(r.PDFDir(), "resume_x_attempt_2.pdf")
	require.NoError(t, os.WriteFile(attemptPDF, []byte("%PDF-1.5 fake"), 0644))

	finalPDF, err := r.FinalizeArtifact(testResume(), "resume_x_attempt_2", "resume_x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.PDFDir(), "resume_x.pdf"), finalPDF)

	data, err := os.ReadFile(finalPDF)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.5 fake"), data)

	texData, err := os.ReadFile(filepath.Join(r.GeneratedDir(), "resume_x.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(texData), "Jane Doe")
}

func TestRenderer_FinalizeArtifact_MissingAttempt(t *testing.T) {
	tmpDir := t.TempDir()
	r, err := NewRenderer(writeTestTemplate(t, tmpDir), filepath.Join(tmpDir, "output"))
	require.NoError(t, err)

	_, err = r.FinalizeArtifact(testResume(), "resume_never_rendered", "resume_final")
	assert.Error(t, err)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}
