package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// CompilationTimeout is the maximum time to wait for LaTeX compilation
	CompilationTimeout = 30 * time.Second
)

// CompileLaTeX compiles a LaTeX file using pdflatex. The output PDF and
// auxiliary files are written next to the .tex file in workDir.
func CompileLaTeX(ctx context.Context, texPath string, workDir string) (pdfPath string, logOutput string, err error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return "", "", &CompilationError{
			Message: "pdflatex not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	if workDir == "" {
		var err error
		workDir, err = os.MkdirTemp("", "latex-compile-*")
		if err != nil {
			return "", "", &CompilationError{
				Message: "failed to create temporary working directory",
				Cause:   err,
			}
		}
	} else {
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return "", "", &CompilationError{
				Message: fmt.Sprintf("failed to create working directory: %s", workDir),
				Cause:   err,
			}
		}
	}

	texBaseName := filepath.Base(texPath)
	workTexPath := filepath.Join(workDir, texBaseName)

	// Copy the source in unless it is already in the working directory
	if texPath != workTexPath {
		texContent, err := os.ReadFile(texPath)
		if err != nil {
			return "", "", &CompilationError{
				Message: fmt.Sprintf("failed to read LaTeX file: %s", texPath),
				Cause:   err,
			}
		}
		if err := os.WriteFile(workTexPath, texContent, 0644); err != nil {
			return "", "", &CompilationError{
				Message: fmt.Sprintf("failed to write LaTeX file to working directory: %s", workDir),
				Cause:   err,
			}
		}
	}

	compileCtx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	// Run pdflatex twice so cross-references and spacing settle, matching
	// how the template's section macros expect to be compiled.
	var runErr error
	for run := 0; run < 2; run++ {
		cmd := exec.CommandContext(compileCtx, "pdflatex", "-interaction=nonstopmode", "-output-directory", workDir, workTexPath)

		var stdout, stderr strings.Builder
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		runErr = cmd.Run()
		logOutput = stdout.String() + stderr.String()
		if runErr != nil {
			break
		}
	}

	pdfPath = filepath.Join(workDir, strings.TrimSuffix(texBaseName, ".tex")+".pdf")
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		return "", logOutput, &CompilationError{
			Message:   fmt.Sprintf("LaTeX compilation failed: PDF was not generated\n%s", extractLaTeXError(logOutput)),
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	// LaTeX can produce a PDF while still exiting nonzero; treat that as a
	// failure too since the document layout cannot be trusted.
	if runErr != nil {
		return pdfPath, logOutput, &CompilationError{
			Message:   fmt.Sprintf("LaTeX compilation completed with errors\n%s", extractLaTeXError(logOutput)),
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdfPath, logOutput, nil
}

// extractLaTeXError pulls the most relevant error lines from pdflatex output.
// pdflatex marks errors with a leading "!".
func extractLaTeXError(latexOutput string) string {
	lines := strings.Split(latexOutput, "\n")
	var errorLines []string

	for i, line := range lines {
		if strings.HasPrefix(line, "!") {
			errorLines = append(errorLines, line)
			for j := i + 1; j < len(lines) && j < i+5; j++ {
				if strings.TrimSpace(lines[j]) != "" {
					errorLines = append(errorLines, lines[j])
				}
			}
		}
	}

	if len(errorLines) > 0 {
		return strings.Join(errorLines, "\n")
	}
	return "Unknown LaTeX error (check full compilation log)"
}

// CleanAuxFiles removes auxiliary files pdflatex leaves behind for the given
// document base name.
func CleanAuxFiles(workDir, baseName string) {
	extensions := []string{".aux", ".log", ".out", ".toc", ".fdb_latexmk", ".fls", ".synctex.gz"}
	for _, ext := range extensions {
		_ = os.Remove(filepath.Join(workDir, baseName+ext))
	}
}
