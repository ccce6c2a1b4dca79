// Package tailoring rewrites resume content against a job description using
// an LLM, and provides the AI-backed content reducer used during page-fit
// optimization.
package tailoring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// DefaultMaxBulletsPerJob caps bullet points per experience entry in the
	// tailored output.
	DefaultMaxBulletsPerJob = 3
	// DefaultMaxProjects caps the number of projects in the tailored output.
	DefaultMaxProjects = 3
)

// Options controls the tailoring pass.
type Options struct {
	MaxBulletsPerJob int
	MaxProjects      int
}

// DefaultOptions returns the standard tailoring limits.
func DefaultOptions() Options {
	return Options{
		MaxBulletsPerJob: DefaultMaxBulletsPerJob,
		MaxProjects:      DefaultMaxProjects,
	}
}

// Service tailors resumes to job descriptions via an LLM client.
type Service struct {
	client llm.Client
}

// NewService creates a tailoring service backed by the given LLM client.
func NewService(client llm.Client) *Service {
	return &Service{client: client}
}

// Tailor rewrites the resume to match the job description. The returned
// resume has the same structure as the input, passes validation, and always
// carries the original contact block regardless of what the model returned.
func (s *Service) Tailor(ctx context.Context, resume *types.Resume, jobDescription string, opts Options) (*types.Resume, error) {
	if opts.MaxBulletsPerJob <= 0 {
		opts.MaxBulletsPerJob = DefaultMaxBulletsPerJob
	}
	if opts.MaxProjects <= 0 {
		opts.MaxProjects = DefaultMaxProjects
	}

	resumeJSON, err := json.MarshalIndent(resume, "", "  ")
	if err != nil {
		return nil, &Error{Message: "failed to serialize resume", Cause: err}
	}

	template, err := prompts.Get("tailoring.json", "tailor-resume")
	if err != nil {
		return nil, &Error{Message: "failed to load tailoring prompt", Cause: err}
	}

	prompt := prompts.Format(template, map[string]string{
		"JobDescription": jobDescription,
		"ResumeJSON":     string(resumeJSON),
		"MaxBullets":     fmt.Sprintf("%d", opts.MaxBulletsPerJob),
		"MaxProjects":    fmt.Sprintf("%d", opts.MaxProjects),
	})

	response, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, &Error{Message: "LLM request failed", Cause: err}
	}

	return parseResumeResponse(response, resume)
}

// parseResumeResponse decodes an LLM response into a resume, pins the contact
// block to the original, and validates the result.
func parseResumeResponse(response string, original *types.Resume) (*types.Resume, error) {
	var result types.Resume
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		return nil, &Error{Message: "LLM returned unparseable JSON", Cause: err}
	}

	// The contact block is never subject to rewriting
	result.Contact = original.Contact

	if err := result.Validate(); err != nil {
		return nil, &Error{Message: "LLM returned structurally invalid resume", Cause: err}
	}

	return &result, nil
}
