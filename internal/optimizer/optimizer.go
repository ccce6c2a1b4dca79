package optimizer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-tailor/internal/types"
)

// DefaultMaxIterations is the iteration budget used when Options leaves
// MaxIterations unset.
const DefaultMaxIterations = 5

// DocumentRenderer renders a resume into a compiled PDF artifact and reports
// its page count. Implementations own all filesystem and toolchain access;
// the optimizer never touches either directly.
type DocumentRenderer interface {
	// RenderAndCompile renders the resume under the given artifact name and
	// returns the compiled PDF path and its page count.
	RenderAndCompile(ctx context.Context, resume *types.Resume, artifactName string) (pdfPath string, pageCount int, err error)

	// FinalizeArtifact persists an already-compiled attempt under its final
	// name (copying the PDF and writing the final LaTeX source) without
	// recompiling the identical document.
	FinalizeArtifact(resume *types.Resume, attemptName, finalName string) (pdfPath string, err error)
}

// ContentReducer shrinks a resume toward a target page count. AI-backed
// implementations may fail at any time; the optimizer treats every failure
// as recoverable.
type ContentReducer interface {
	Reduce(ctx context.Context, resume *types.Resume, currentPages, targetPages int) (*types.Resume, error)
}

// Options configures a single optimization call.
type Options struct {
	// MaxIterations bounds the render-measure-reduce loop. Values below 1
	// fall back to DefaultMaxIterations.
	MaxIterations int
	// UseAI attempts the AI reducer before the deterministic heuristic.
	UseAI bool
	// OnIteration, when set, is invoked after each render attempt with
	// its measured page count.
	OnIteration func(iteration, maxIterations, pageCount int)
	// OnFallback, when set, is invoked when an AI reduction fails and
	// the heuristic takes over. The warning line is written regardless.
	OnFallback func(iteration int, cause error)
}

// Result describes the outcome of an optimization call. Exhausting the
// iteration budget is not an error: the best attempt is returned with
// Succeeded=false.
type Result struct {
	// Resume is the final (possibly reduced) document.
	Resume *types.Resume
	// PDFPath is the compiled artifact under the caller's output ID.
	PDFPath string
	// PageCount is the page count of the final artifact.
	PageCount int
	// IterationsUsed is the number of render attempts performed.
	IterationsUsed int
	// Succeeded reports whether the final artifact is exactly one page.
	Succeeded bool
	// HeuristicReductions counts how many iterations fell back to (or
	// directly used) the deterministic reducer. A nonzero count with UseAI
	// set signals AI reduction failures to operators.
	HeuristicReductions int
}

// Optimizer drives the page-fit loop: render, measure, and reduce until the
// compiled resume fits exactly one page or the iteration budget runs out.
type Optimizer struct {
	renderer DocumentRenderer
	reducer  ContentReducer
	warnOut  io.Writer
}

// New creates an Optimizer. The reducer may be nil, in which case every
// reduction uses the heuristic regardless of Options.UseAI.
func New(renderer DocumentRenderer, reducer ContentReducer) *Optimizer {
	return &Optimizer{
		renderer: renderer,
		reducer:  reducer,
		warnOut:  os.Stderr,
	}
}

// SetWarnOutput redirects fallback warnings. Useful for tests and for the
// HTTP server, which forwards them to its own log.
func (o *Optimizer) SetWarnOutput(w io.Writer) {
	o.warnOut = w
}

// Optimize iteratively shrinks the resume until it compiles to exactly one
// page. outputID namespaces the renderer's artifacts; intermediate attempts
// are written as "{outputID}_attempt_{n}" and the final document under the
// plain outputID. Callers running concurrent optimizations must use distinct
// output IDs.
//
// Renderer failures and degenerate (<1 page) documents are fatal and
// returned as *Error. Reducer failures are recovered by the heuristic.
// Exhausting the budget returns a Result with Succeeded=false and a nil
// error.
func (o *Optimizer) Optimize(ctx context.Context, resume *types.Resume, outputID string, opts Options) (*Result, error) {
	maxIterations := opts.MaxIterations
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}

	current := resume
	iteration := 0
	heuristicReductions := 0

	for iteration < maxIterations {
		iteration++

		attemptName := fmt.Sprintf("%s_attempt_%d", outputID, iteration)
		_, pageCount, err := o.renderer.RenderAndCompile(ctx, current, attemptName)
		if err != nil {
			// A broken template or toolchain will not fix itself by
			// reducing content.
			return nil, &Error{
				Message:   fmt.Sprintf("render failed on attempt %d", iteration),
				Iteration: iteration,
				Cause:     err,
			}
		}

		if opts.OnIteration != nil {
			opts.OnIteration(iteration, maxIterations, pageCount)
		}

		if pageCount == 1 {
			finalPath, err := o.renderer.FinalizeArtifact(current, attemptName, outputID)
			if err != nil {
				return nil, &Error{
					Message:   fmt.Sprintf("failed to persist final artifact after attempt %d", iteration),
					Iteration: iteration,
					PageCount: pageCount,
					Cause:     err,
				}
			}
			return &Result{
				Resume:              current,
				PDFPath:             finalPath,
				PageCount:           1,
				IterationsUsed:      iteration,
				Succeeded:           true,
				HeuristicReductions: heuristicReductions,
			}, nil
		}

		if pageCount < 1 {
			return nil, &Error{
				Message:   fmt.Sprintf("rendered artifact has %d pages: document is empty or invalid", pageCount),
				Iteration: iteration,
				PageCount: pageCount,
			}
		}

		// Too long. On the last allowed iteration there is no point
		// reducing again without a render to measure it.
		if iteration >= maxIterations {
			break
		}

		if opts.UseAI && o.reducer != nil {
			reduced, err := o.reducer.Reduce(ctx, current, pageCount, 1)
			if err == nil {
				current = reduced
				continue
			}
			fmt.Fprintf(o.warnOut, "warning: AI content reduction failed on attempt %d, applying heuristic reduction: %v\n", iteration, err)
			if opts.OnFallback != nil {
				opts.OnFallback(iteration, err)
			}
		}

		current = ReduceHeuristic(current)
		heuristicReductions++
	}

	// Best effort: compile the still-too-long document under the final name
	// and report the result without raising.
	pdfPath, pageCount, err := o.renderer.RenderAndCompile(ctx, current, outputID)
	if err != nil {
		return nil, &Error{
			Message:   "render failed during best-effort finalization",
			Iteration: iteration,
			Cause:     err,
		}
	}

	return &Result{
		Resume:              current,
		PDFPath:             pdfPath,
		PageCount:           pageCount,
		IterationsUsed:      iteration,
		Succeeded:           false,
		HeuristicReductions: heuristicReductions,
	}, nil
}
