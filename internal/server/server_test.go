package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/optimizer"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// newTestServer creates a server without a database and with a stubbed
// pipeline run function.
func newTestServer(run func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)) *Server {
	return &Server{
		apiKey:        "test-api-key",
		resumePath:    "resume.json",
		templatePath:  "resume.tex",
		outputDir:     "output",
		maxIterations: 5,
		run:           run,
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp["status"])
	}
}

func TestTailorEndpoint_MissingJob(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleTailor(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestTailorEndpoint_BothJobSources(t *testing.T) {
	s := newTestServer(nil)

	body := `{"job_url": "https://example.com/job", "job_text": "Go engineer"}`
	req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleTailor(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestTailorEndpoint_NoResumeConfigured(t *testing.T) {
	s := newTestServer(nil)
	s.resumePath = ""

	body := `{"job_text": "Go engineer"}`
	req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleTailor(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestTailorEndpoint_Success(t *testing.T) {
	runID := uuid.New()
	var gotOpts pipeline.Options
	s := newTestServer(func(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		gotOpts = opts
		return &pipeline.Result{
			RunID:   runID,
			TexPath: "output/generated/run.tex",
			PDFPath: "output/pdfs/run.pdf",
			Optimization: &optimizer.Result{
				Succeeded:      true,
				PageCount:      1,
				IterationsUsed: 2,
			},
		}, nil
	})

	body := `{"job_text": "Senior Go Engineer posting", "max_iterations": 3}`
	req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleTailor(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp TailorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.RunID != runID.String() {
		t.Errorf("expected run_id %s, got %s", runID, resp.RunID)
	}
	if !resp.Succeeded || resp.PageCount != 1 || resp.Iterations != 2 {
		t.Errorf("unexpected result fields: %+v", resp)
	}

	// Job text is staged into a temp file for the pipeline
	if gotOpts.JobPath == "" {
		t.Fatal("expected a staged job file path")
	}
	if gotOpts.MaxIterations != 3 {
		t.Errorf("expected max iterations 3, got %d", gotOpts.MaxIterations)
	}
	if !gotOpts.UseAI {
		t.Error("expected AI enabled when an API key is configured")
	}
	// The staged file is removed after the handler returns
	if _, err := os.Stat(gotOpts.JobPath); !os.IsNotExist(err) {
		t.Errorf("expected staged job file to be cleaned up: %v", err)
	}
}

func TestTailorEndpoint_DistinctOutputIDs(t *testing.T) {
	var outputIDs []string
	s := newTestServer(func(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		outputIDs = append(outputIDs, opts.OutputID)
		return &pipeline.Result{Optimization: &optimizer.Result{PageCount: 1, Succeeded: true}}, nil
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(`{"job_text": "posting"}`))
		w := httptest.NewRecorder()
		s.handleTailor(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
	}

	if len(outputIDs) != 2 || outputIDs[0] == "" || outputIDs[1] == "" {
		t.Fatalf("expected two non-empty output IDs, got %v", outputIDs)
	}
	// Requests landing in the same second must not clobber each other's
	// artifacts, so the server never relies on a timestamp-derived ID.
	if outputIDs[0] == outputIDs[1] {
		t.Errorf("requests must not share an output ID: %q", outputIDs[0])
	}
}

func TestTailorEndpoint_NoAI(t *testing.T) {
	var gotOpts pipeline.Options
	s := newTestServer(func(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		gotOpts = opts
		return &pipeline.Result{Optimization: &optimizer.Result{PageCount: 1, Succeeded: true}}, nil
	})

	body := `{"job_text": "posting", "no_ai": true}`
	req := httptest.NewRequest(http.MethodPost, "/tailor", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleTailor(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotOpts.UseAI {
		t.Error("expected AI disabled when no_ai is set")
	}

	var resp TailorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.RunID != "" {
		t.Errorf("expected empty run_id without a database, got %s", resp.RunID)
	}
}

func TestTailorStreamEndpoint(t *testing.T) {
	runID := uuid.New()
	s := newTestServer(func(_ context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		opts.OnProgress(pipeline.ProgressEvent{Step: "job_posting", Category: "ingestion", Message: "ingested"})
		return &pipeline.Result{
			RunID:        runID,
			Optimization: &optimizer.Result{Succeeded: true, PageCount: 1},
		}, nil
	})

	body := `{"job_text": "posting"}`
	req := httptest.NewRequest(http.MethodPost, "/tailor/stream", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleTailorStream(w, req)

	out := w.Body.String()
	if !strings.Contains(out, "event: step") {
		t.Errorf("expected a step event in SSE output: %s", out)
	}
	if !strings.Contains(out, "event: complete") {
		t.Errorf("expected a complete event in SSE output: %s", out)
	}
	if !strings.Contains(out, runID.String()) {
		t.Errorf("expected run ID in completion event: %s", out)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected SSE content type, got %s", ct)
	}
}

func TestRunsEndpoints_NoDatabase(t *testing.T) {
	s := newTestServer(nil)
	mux := s.routes()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/runs"},
		{http.MethodGet, "/runs/" + uuid.New().String()},
		{http.MethodDelete, "/runs/" + uuid.New().String()},
		{http.MethodGet, "/runs/" + uuid.New().String() + "/resume.tex"},
		{http.MethodGet, "/runs/" + uuid.New().String() + "/resume.pdf"},
	}

	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected status 503, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestProgressStream_Step(t *testing.T) {
	w := httptest.NewRecorder()
	stream, err := newProgressStream(w)
	if err != nil {
		t.Fatalf("failed to create progress stream: %v", err)
	}

	if err := stream.step(pipeline.ProgressEvent{Step: "job_posting", Message: "hello"}); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}

	out := w.Body.String()
	if !strings.Contains(out, "event: step\n") {
		t.Errorf("missing event line: %q", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("missing data payload: %q", out)
	}
}
