package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/recipepocket/content-agent/internal/observability"
	"github.com/recipepocket/content-agent/internal/pipeline"
)

// eventStream pushes one run's progress to a client as Server-Sent Events:
// "log" events carry run log entries as they happen, "result" carries the
// per-article outcomes, and a final "complete" event marks the terminal state.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &eventStream{w: w, flusher: flusher}, nil
}

func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Log forwards one run log entry.
func (s *eventStream) Log(e observability.Event) {
	s.send("log", e) //nolint:errcheck
}

// Result sends the batch outcome.
func (s *eventStream) Result(r *pipeline.RunResult) {
	s.send("result", r) //nolint:errcheck
}

// Complete closes out the stream with the run's terminal state.
func (s *eventStream) Complete(runID, status string) {
	s.send("complete", map[string]string{ //nolint:errcheck
		"run_id": runID,
		"status": status,
	})
}
