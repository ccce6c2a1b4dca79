package tailoring

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Reducer asks an LLM to shrink resume content toward a page target. It
// satisfies the optimizer's ContentReducer contract: any failure, including
// a response that does not validate, is returned as an error so the caller
// can fall back to deterministic reduction.
type Reducer struct {
	client llm.Client
}

// NewReducer creates an AI-backed content reducer.
func NewReducer(client llm.Client) *Reducer {
	return &Reducer{client: client}
}

// Reduce returns a reduced copy of the resume. The input is never modified.
func (r *Reducer) Reduce(ctx context.Context, resume *types.Resume, currentPages, targetPages int) (*types.Resume, error) {
	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, &Error{Message: "failed to serialize resume", Cause: err}
	}

	template, err := prompts.Get("reduction.json", "reduce-content")
	if err != nil {
		return nil, &Error{Message: "failed to load reduction prompt", Cause: err}
	}

	prompt := prompts.Format(template, map[string]string{
		"ResumeJSON":   string(resumeJSON),
		"CurrentPages": strconv.Itoa(currentPages),
		"TargetPages":  strconv.Itoa(targetPages),
	})

	response, err := r.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Message: "LLM request failed", Cause: err}
	}

	return parseResumeResponse(response, resume)
}
