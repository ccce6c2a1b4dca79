// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/optimizer"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResumeSummary outputs a human-readable summary of a resume document.
func (p *Printer) PrintResumeSummary(title string, resume *types.Resume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", resume.Contact.Name))
	sb.WriteString(fmt.Sprintf("Education entries:  %d\n", len(resume.Education)))
	sb.WriteString(fmt.Sprintf("Experience entries: %d (%d bullets)\n",
		len(resume.Experience), countExperienceBullets(resume)))
	sb.WriteString(fmt.Sprintf("Projects:           %d\n", len(resume.Projects)))
	sb.WriteString(fmt.Sprintf("Skill categories:   %d\n", len(resume.Skills)))

	count := 0
	for _, exp := range resume.Experience {
		if count >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resume.Experience)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s, %s\n", exp.Title, exp.Company))
		count++
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOptimizationProgress outputs a single page-fit iteration status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOptimizationProgress(iteration, maxIterations, pageCount int) {
	fmt.Fprintf(p.out, "  [%d/%d] rendered %d page(s)\n", iteration, maxIterations, pageCount)
}

// PrintOptimizationResult outputs the final page-fit outcome.
func (p *Printer) PrintOptimizationResult(result *optimizer.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Succeeded {
		sb.WriteString("Status:     fits on one page\n")
	} else {
		sb.WriteString(fmt.Sprintf("Status:     best effort (%d pages)\n", result.PageCount))
	}
	sb.WriteString(fmt.Sprintf("Iterations: %d\n", result.IterationsUsed))
	if result.HeuristicReductions > 0 {
		sb.WriteString(fmt.Sprintf("Heuristic fallbacks: %d\n", result.HeuristicReductions))
	}
	sb.WriteString(fmt.Sprintf("PDF: %s", result.PDFPath))

	p.printBox("PAGE-FIT OPTIMIZATION", sb.String())
}

// PrintFallbackWarning notes that an AI reduction failed and the
// deterministic reducer took over.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFallbackWarning(iteration int, cause error) {
	fmt.Fprintf(p.out, "  [warn] iteration %d: AI reduction failed (%v), using heuristic reduction\n", iteration, cause)
}

func countExperienceBullets(resume *types.Resume) int {
	total := 0
	for _, exp := range resume.Experience {
		total += len(exp.Bullets)
	}
	return total
}
