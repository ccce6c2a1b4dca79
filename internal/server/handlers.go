package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// TailorRequest represents the request body for /tailor
type TailorRequest struct {
	JobURL        string `json:"job_url,omitempty"`
	JobText       string `json:"job_text,omitempty"`
	Resume        string `json:"resume,omitempty"`
	Template      string `json:"template,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
	NoAI          bool   `json:"no_ai,omitempty"`
	UseBrowser    bool   `json:"use_browser,omitempty"`
}

// TailorResponse represents the response for /tailor
type TailorResponse struct {
	RunID      string `json:"run_id,omitempty"`
	Succeeded  bool   `json:"succeeded"`
	PageCount  int    `json:"page_count"`
	Iterations int    `json:"iterations"`
	PDFPath    string `json:"pdf_path"`
	TexPath    string `json:"tex_path"`
}

// RunResponse represents a run in /runs responses
type RunResponse struct {
	RunID       string `json:"run_id"`
	JobSource   string `json:"job_source"`
	Status      string `json:"status"`
	PageCount   int    `json:"page_count"`
	Iterations  int    `json:"iterations"`
	Succeeded   bool   `json:"succeeded"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func runResponse(run *db.Run) RunResponse {
	resp := RunResponse{
		RunID:      run.ID.String(),
		JobSource:  run.JobSource,
		Status:     run.Status,
		PageCount:  run.PageCount,
		Iterations: run.Iterations,
		Succeeded:  run.Succeeded,
		CreatedAt:  run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// pipelineOptions validates a tailor request and converts it into pipeline
// options. The returned cleanup removes any temporary job file.
func (s *Server) pipelineOptions(req *TailorRequest) (pipeline.Options, func(), string) {
	cleanup := func() {}

	if req.JobURL == "" && req.JobText == "" {
		return pipeline.Options{}, cleanup, "Either job_url or job_text is required"
	}
	if req.JobURL != "" && req.JobText != "" {
		return pipeline.Options{}, cleanup, "job_url and job_text are mutually exclusive"
	}

	resumePath := req.Resume
	if resumePath == "" {
		resumePath = s.resumePath
	}
	if resumePath == "" {
		return pipeline.Options{}, cleanup, "No resume configured: pass resume or start the server with one"
	}

	templatePath := req.Template
	if templatePath == "" {
		templatePath = s.templatePath
	}

	maxIterations := req.MaxIterations
	if maxIterations == 0 {
		maxIterations = s.maxIterations
	}

	// Concurrent requests must not share artifact names, so each run gets
	// its own output ID instead of the timestamp default.
	opts := pipeline.Options{
		ResumePath:    resumePath,
		JobURL:        req.JobURL,
		TemplatePath:  templatePath,
		OutputDir:     s.outputDir,
		OutputID:      "resume_" + uuid.New().String(),
		MaxIterations: maxIterations,
		APIKey:        s.apiKey,
		UseAI:         !req.NoAI && s.apiKey != "",
		UseBrowser:    req.UseBrowser,
		DatabaseURL:   s.databaseURL,
	}

	if req.JobText != "" {
		jobFile, err := os.CreateTemp("", "job-*.txt")
		if err != nil {
			return pipeline.Options{}, cleanup, "Failed to stage job text: " + err.Error()
		}
		if _, err := jobFile.WriteString(req.JobText); err != nil {
			jobFile.Close()
			os.Remove(jobFile.Name())
			return pipeline.Options{}, cleanup, "Failed to stage job text: " + err.Error()
		}
		jobFile.Close()
		opts.JobPath = jobFile.Name()
		cleanup = func() { os.Remove(jobFile.Name()) }
	}

	return opts, cleanup, ""
}

// handleTailor runs the tailoring pipeline synchronously and returns the
// final document summary.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts, cleanup, problem := s.pipelineOptions(&req)
	defer cleanup()
	if problem != "" {
		s.errorResponse(w, http.StatusBadRequest, problem)
		return
	}

	log.Printf("Starting tailoring run (job source: %s%s)", opts.JobURL, opts.JobPath)

	result, err := s.run(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Pipeline failed: "+err.Error())
		return
	}

	resp := TailorResponse{
		Succeeded:  result.Optimization.Succeeded,
		PageCount:  result.Optimization.PageCount,
		Iterations: result.Optimization.IterationsUsed,
		PDFPath:    result.PDFPath,
		TexPath:    result.TexPath,
	}
	if result.RunID != uuid.Nil {
		resp.RunID = result.RunID.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleTailorStream runs the pipeline and streams progress via SSE
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	var req TailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts, cleanup, problem := s.pipelineOptions(&req)
	defer cleanup()
	if problem != "" {
		s.errorResponse(w, http.StatusBadRequest, problem)
		return
	}

	stream, err := newProgressStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := stream.step(event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	log.Printf("Starting streaming tailoring run...")

	result, err := s.run(r.Context(), opts)
	if err != nil {
		log.Printf("Pipeline run failed: %v", err)
		stream.fail(err.Error())
		return
	}

	runID := ""
	if result.RunID != uuid.Nil {
		runID = result.RunID.String()
	}
	status := "best_effort"
	if result.Optimization.Succeeded {
		status = "completed"
	}
	stream.complete(runID, status)
	log.Printf("Streaming tailoring run completed")
}

// handleListRuns returns persisted runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	response := make([]RunResponse, 0, len(runs))
	for i := range runs {
		response = append(response, runResponse(&runs[i]))
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  response,
		"count": len(response),
	})
}

// handleGetRun returns a single run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, runResponse(run))
}

// handleDeleteRun deletes a run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		if errors.Is(err, db.ErrRunNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Run not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRunResumeTex returns the final LaTeX source for a run as plain text
func (s *Server) handleRunResumeTex(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	tex, err := s.db.GetTextArtifact(r.Context(), runID, db.StepResumeTex)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if tex == "" {
		s.errorResponse(w, http.StatusNotFound, "resume.tex not found for this run")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=resume.tex")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(tex))
}

// handleRunResumePDF returns the compiled PDF for a run
func (s *Server) handleRunResumePDF(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	pdf, err := s.db.GetBinaryArtifact(r.Context(), runID, db.StepResumePDF)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if len(pdf) == 0 {
		s.errorResponse(w, http.StatusNotFound, "resume.pdf not found for this run")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=resume.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// parseRunID extracts and parses the {id} path value, writing an error
// response on failure.
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Run ID is required")
		return uuid.Nil, false
	}

	runID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return uuid.Nil, false
	}
	return runID, true
}
