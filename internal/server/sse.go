package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// progressStream pushes pipeline progress to one client over Server-Sent
// Events. Each pipeline step becomes a "step" event; the stream ends with
// either a "complete" or an "error" event.
type progressStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newProgressStream(w http.ResponseWriter) (*progressStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &progressStream{w: w, flusher: flusher}, nil
}

// send writes a single SSE event with JSON data and flushes it immediately,
// so clients see steps as they happen rather than when the run finishes.
func (s *progressStream) send(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// step forwards one pipeline progress event to the client.
func (s *progressStream) step(event pipeline.ProgressEvent) error {
	return s.send("step", event)
}

// fail terminates the stream with an error event.
func (s *progressStream) fail(message string) {
	s.send("error", map[string]string{"error": message}) //nolint:errcheck
}

// complete terminates the stream with the run outcome.
func (s *progressStream) complete(runID, status string) {
	s.send("complete", map[string]string{ //nolint:errcheck
		"run_id": runID,
		"status": status,
	})
}
