package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

// stubRenderer returns scripted page counts per render call, simulating the
// compile step without a LaTeX toolchain.
type stubRenderer struct {
	pageCounts []int // consumed one per RenderAndCompile call
	renderErr  error
	calls      []string // artifact names in call order
	finalized  []string // "attempt->final" records
}

func (s *stubRenderer) RenderAndCompile(_ context.Context, _ *types.Resume, artifactName string) (string, int, error) {
	s.calls = append(s.calls, artifactName)
	if s.renderErr != nil {
		return "", 0, s.renderErr
	}
	if len(s.pageCounts) == 0 {
		return "", 0, errors.New("stub renderer: no page counts left")
	}
	count := s.pageCounts[0]
	s.pageCounts = s.pageCounts[1:]
	return "/tmp/" + artifactName + ".pdf", count, nil
}

func (s *stubRenderer) FinalizeArtifact(_ *types.Resume, attemptName, finalName string) (string, error) {
	s.finalized = append(s.finalized, attemptName+"->"+finalName)
	return "/tmp/" + finalName + ".pdf", nil
}

// stubReducer trims one experience bullet per call, or fails.
type stubReducer struct {
	err   error
	calls int
}

func (s *stubReducer) Reduce(_ context.Context, resume *types.Resume, _, _ int) (*types.Resume, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	reduced := resume.Clone()
	if len(reduced.Experience[0].Bullets) > 1 {
		reduced.Experience[0].Bullets = reduced.Experience[0].Bullets[:len(reduced.Experience[0].Bullets)-1]
	}
	return reduced, nil
}

func newTestOptimizer(renderer DocumentRenderer, reducer ContentReducer) *Optimizer {
	o := New(renderer, reducer)
	o.SetWarnOutput(io.Discard)
	return o
}

func TestOptimize_AlreadyOnePage(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{1}}
	reducer := &stubReducer{}
	o := newTestOptimizer(renderer, reducer)

	resume := oversizedResume()
	result, err := o.Optimize(context.Background(), resume, "resume_x", Options{MaxIterations: 5, UseAI: true})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, 1, result.IterationsUsed)
	assert.Equal(t, 1, result.PageCount)
	assert.True(t, resume.Equal(result.Resume), "document must be unchanged")
	assert.Zero(t, reducer.calls, "reducer must not run for a fitting document")
	assert.Equal(t, []string{"resume_x_attempt_1"}, renderer.calls)
	assert.Equal(t, []string{"resume_x_attempt_1->resume_x"}, renderer.finalized)
	assert.Equal(t, "/tmp/resume_x.pdf", result.PDFPath, "result must point at the finalized artifact, not the attempt")
}

func TestOptimize_RendererFailureIsFatal(t *testing.T) {
	renderErr := errors.New("pdflatex not found in PATH")
	renderer := &stubRenderer{renderErr: renderErr}
	reducer := &stubReducer{}
	o := newTestOptimizer(renderer, reducer)

	_, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5, UseAI: true})
	require.Error(t, err)

	var optErr *Error
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, 1, optErr.Iteration)
	assert.ErrorIs(t, err, renderErr)
	assert.Zero(t, reducer.calls, "reducer must never run after a fatal render error")
}

func TestOptimize_DegeneratePageCountIsFatal(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{0}}
	o := newTestOptimizer(renderer, &stubReducer{})

	_, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5})
	require.Error(t, err)

	var optErr *Error
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, 0, optErr.PageCount)
}

func TestOptimize_BudgetExhaustedIsBestEffort(t *testing.T) {
	// Two pages on the single allowed attempt, then two pages again on the
	// best-effort finalization render.
	renderer := &stubRenderer{pageCounts: []int{2, 2}}
	reducer := &stubReducer{}
	o := newTestOptimizer(renderer, reducer)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 1, UseAI: true})
	require.NoError(t, err, "budget exhaustion is not an error")

	assert.False(t, result.Succeeded)
	assert.Equal(t, 1, result.IterationsUsed)
	assert.Equal(t, 2, result.PageCount)
	assert.Zero(t, reducer.calls, "no reduction may follow the last allowed iteration")
	assert.Equal(t, []string{"resume_x_attempt_1", "resume_x"}, renderer.calls)
}

func TestOptimize_AIReducerUsedWhenEnabled(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{2, 1}}
	reducer := &stubReducer{}
	o := newTestOptimizer(renderer, reducer)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5, UseAI: true})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, 2, result.IterationsUsed)
	assert.Equal(t, 1, reducer.calls)
	assert.Zero(t, result.HeuristicReductions)
}

func TestOptimize_FallsBackWhenAIFails(t *testing.T) {
	// AI unavailable on every call: the loop must still converge using only
	// the heuristic, never aborting on reducer errors.
	renderer := &stubRenderer{pageCounts: []int{2, 2, 1}}
	reducer := &stubReducer{err: errors.New("deadline exceeded")}
	o := newTestOptimizer(renderer, reducer)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5, UseAI: true})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, 3, result.IterationsUsed)
	assert.Equal(t, 2, reducer.calls)
	assert.Equal(t, 2, result.HeuristicReductions)
}

func TestOptimize_HeuristicOnlyWhenAIDisabled(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{2, 1}}
	reducer := &stubReducer{}
	o := newTestOptimizer(renderer, reducer)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5, UseAI: false})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Zero(t, reducer.calls)
	assert.Equal(t, 1, result.HeuristicReductions)
}

func TestOptimize_NilReducerFallsBackToHeuristic(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{2, 1}}
	o := newTestOptimizer(renderer, nil)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{MaxIterations: 5, UseAI: true})
	require.NoError(t, err)
	assert.True(t, result.Succeeded)
}

func TestOptimize_CallbacksObserveIterationsAndFallbacks(t *testing.T) {
	renderer := &stubRenderer{pageCounts: []int{2, 1}}
	reducer := &stubReducer{err: errors.New("deadline exceeded")}
	o := newTestOptimizer(renderer, reducer)

	var iterations []int
	var pages []int
	var fallbacks []int
	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{
		MaxIterations: 5,
		UseAI:         true,
		OnIteration: func(iteration, maxIterations, pageCount int) {
			iterations = append(iterations, iteration)
			pages = append(pages, pageCount)
			assert.Equal(t, 5, maxIterations)
		},
		OnFallback: func(iteration int, cause error) {
			fallbacks = append(fallbacks, iteration)
			assert.ErrorContains(t, cause, "deadline exceeded")
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, []int{1, 2}, iterations)
	assert.Equal(t, []int{2, 1}, pages)
	assert.Equal(t, []int{1}, fallbacks)
}

func TestOptimize_DefaultIterationBudget(t *testing.T) {
	// MaxIterations 0 uses the default of 5; five two-page attempts then a
	// best-effort render.
	renderer := &stubRenderer{pageCounts: []int{2, 2, 2, 2, 2, 2}}
	o := newTestOptimizer(renderer, nil)

	result, err := o.Optimize(context.Background(), oversizedResume(), "resume_x", Options{})
	require.NoError(t, err)
	assert.False(t, result.Succeeded)
	assert.Equal(t, DefaultMaxIterations, result.IterationsUsed)
}

func TestOptimize_ConvergenceScenario(t *testing.T) {
	// Four projects with two bullets each and three experience entries with
	// five bullets each; the document renders two pages for three attempts
	// and fits on the fourth.
	resume := oversizedResume()
	resume.Projects = []types.Project{
		{Name: "P1", Technologies: "Go", Date: "2023", Bullets: []string{"a", "b"}},
		{Name: "P2", Technologies: "Go", Date: "2023", Bullets: []string{"a", "b"}},
		{Name: "P3", Technologies: "Go", Date: "2022", Bullets: []string{"a", "b"}},
		{Name: "P4", Technologies: "Go", Date: "2021", Bullets: []string{"a", "b"}},
	}
	resume.Experience = []types.Experience{}
	for i := 1; i <= 3; i++ {
		resume.Experience = append(resume.Experience, types.Experience{
			Title: fmt.Sprintf("Role %d", i), Company: "Acme", Location: "Chicago, IL", Dates: "2022",
			Bullets: []string{"b1", "b2", "b3", "b4", "b5"},
		})
	}

	renderer := &stubRenderer{pageCounts: []int{2, 2, 2, 1}}
	o := newTestOptimizer(renderer, nil)

	result, err := o.Optimize(context.Background(), resume, "resume_x", Options{MaxIterations: 5, UseAI: false})
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, 4, result.IterationsUsed)
	assert.Len(t, result.Resume.Projects, 2)
	for _, exp := range result.Resume.Experience {
		assert.LessOrEqual(t, len(exp.Bullets), MaxExperienceBullets)
	}

	// The converged document is a fixed point of the heuristic.
	assert.True(t, result.Resume.Equal(ReduceHeuristic(result.Resume)))
}
