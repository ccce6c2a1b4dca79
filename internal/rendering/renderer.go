package rendering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Renderer renders resumes to LaTeX and compiles them to PDF. LaTeX sources
// and auxiliary output live under OutputDir/generated, finished PDFs under
// OutputDir/pdfs.
type Renderer struct {
	TemplatePath string
	OutputDir    string
}

// NewRenderer creates a Renderer and ensures its output directories exist.
func NewRenderer(templatePath, outputDir string) (*Renderer, error) {
	r := &Renderer{
		TemplatePath: templatePath,
		OutputDir:    outputDir,
	}
	for _, dir := range []string{r.GeneratedDir(), r.PDFDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &RenderError{
				Message: fmt.Sprintf("failed to create output directory: %s", dir),
				Cause:   err,
			}
		}
	}
	return r, nil
}

// GeneratedDir returns the directory holding .tex sources and compile output.
func (r *Renderer) GeneratedDir() string {
	return filepath.Join(r.OutputDir, "generated")
}

// PDFDir returns the directory holding finished PDFs.
func (r *Renderer) PDFDir() string {
	return filepath.Join(r.OutputDir, "pdfs")
}

// RenderAndCompile renders the resume to LaTeX, compiles it, and returns the
// finished PDF path along with its page count. The artifact name is used as
// the base name for both the .tex source and the PDF.
func (r *Renderer) RenderAndCompile(ctx context.Context, resume *types.Resume, artifactName string) (string, int, error) {
	texContent, err := RenderResume(resume, r.TemplatePath)
	if err != nil {
		return "", 0, err
	}

	texPath := filepath.Join(r.GeneratedDir(), artifactName+".tex")
	if err := os.WriteFile(texPath, []byte(texContent), 0644); err != nil {
		return "", 0, &RenderError{
			Message: fmt.Sprintf("failed to write LaTeX source: %s", texPath),
			Cause:   err,
		}
	}

	compiledPDF, _, err := CompileLaTeX(ctx, texPath, r.GeneratedDir())
	if err != nil {
		return "", 0, err
	}

	pdfPath := filepath.Join(r.PDFDir(), artifactName+".pdf")
	if err := copyFile(compiledPDF, pdfPath); err != nil {
		return "", 0, &RenderError{
			Message: fmt.Sprintf("failed to copy PDF to output directory: %s", pdfPath),
			Cause:   err,
		}
	}

	// The .tex source stays behind for inspection; everything else pdflatex
	// produced is noise once the PDF has been copied out.
	CleanAuxFiles(r.GeneratedDir(), artifactName)
	_ = os.Remove(compiledPDF)

	pageCount, err := CountPDFPages(pdfPath)
	if err != nil {
		return "", 0, err
	}

	return pdfPath, pageCount, nil
}

// FinalizeArtifact publishes an already-compiled attempt under its final
// name. The attempt PDF is copied byte for byte and the resume is re-rendered
// to LaTeX so the final .tex source is saved, but pdflatex is never re-run
// for a document that already compiled.
func (r *Renderer) FinalizeArtifact(resume *types.Resume, attemptName, finalName string) (string, error) {
	attemptPDF := filepath.Join(r.PDFDir(), attemptName+".pdf")
	finalPDF := filepath.Join(r.PDFDir(), finalName+".pdf")
	if err := copyFile(attemptPDF, finalPDF); err != nil {
		return "", &RenderError{
			Message: fmt.Sprintf("failed to finalize PDF artifact: %s", finalPDF),
			Cause:   err,
		}
	}

	texContent, err := RenderResume(resume, r.TemplatePath)
	if err != nil {
		return "", err
	}
	texPath := filepath.Join(r.GeneratedDir(), finalName+".tex")
	if err := os.WriteFile(texPath, []byte(texContent), 0644); err != nil {
		return "", &RenderError{
			Message: fmt.Sprintf("failed to write final LaTeX source: %s", texPath),
			Cause:   err,
		}
	}

	return finalPDF, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
