package observability

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jonathan/resume-tailor/internal/optimizer"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintResumeSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	resume := &types.Resume{
		Contact: types.Contact{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-123-4567"},
		Education: []types.Education{
			{Institution: "State University", Location: "IL", Degree: "B.S.", Dates: "2020"},
		},
		Experience: []types.Experience{
			{Title: "Engineer", Company: "Acme", Location: "WA", Dates: "2020", Bullets: []string{"a", "b"}},
		},
		Skills: map[string][]string{"Languages": {"Go"}},
	}

	p.PrintResumeSummary("TAILORED RESUME", resume)
	output := buf.String()

	assert.Contains(t, output, "TAILORED RESUME")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Engineer, Acme")
	assert.Contains(t, output, "(2 bullets)")
}

func TestPrintResumeSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResumeSummary("X", nil)

	assert.Empty(t, buf.String())
}

func TestPrintOptimizationProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOptimizationProgress(2, 5, 3)

	assert.Contains(t, buf.String(), "[2/5] rendered 3 page(s)")
}

func TestPrintOptimizationResult_Success(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOptimizationResult(&optimizer.Result{
		Succeeded:      true,
		IterationsUsed: 3,
		PageCount:      1,
		PDFPath:        "output/pdfs/resume_x.pdf",
	})
	output := buf.String()

	assert.Contains(t, output, "PAGE-FIT OPTIMIZATION")
	assert.Contains(t, output, "fits on one page")
	assert.Contains(t, output, "Iterations: 3")
}

func TestPrintOptimizationResult_BestEffort(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOptimizationResult(&optimizer.Result{
		Succeeded:           false,
		IterationsUsed:      5,
		PageCount:           2,
		HeuristicReductions: 2,
	})
	output := buf.String()

	assert.Contains(t, output, "best effort (2 pages)")
	assert.Contains(t, output, "Heuristic fallbacks: 2")
}

func TestPrintFallbackWarning(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFallbackWarning(2, errors.New("rate limited"))

	assert.Contains(t, buf.String(), "iteration 2")
	assert.Contains(t, buf.String(), "rate limited")
	assert.Contains(t, buf.String(), "heuristic reduction")
}
