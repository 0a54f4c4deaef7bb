// Package events emits NDJSON records describing scan progress, suitable
// for log shippers and worker supervisors.
package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/example/lockscan/internal/detector"
)

// Event represents a single NDJSON record.
type Event struct {
	Type      string                 `json:"type"`
	RunID     string                 `json:"runId,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emitter writes NDJSON events to an io.Writer safely across goroutines.
// Every event carries the run id the emitter was built with.
type Emitter struct {
	writer io.Writer
	runID  string
	mu     sync.Mutex
}

// NewEmitter returns an emitter stamping events with the given run id.
func NewEmitter(w io.Writer, runID string) *Emitter {
	return &Emitter{writer: w, runID: runID}
}

// Emit serializes the event to JSON and appends a newline.
func (e *Emitter) Emit(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.RunID == "" {
		evt.RunID = e.runID
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.writer.Write(append(payload, '\n')); err != nil {
		return err
	}

	return nil
}

// FileResult emits the per-file event for one detection result.
func (e *Emitter) FileResult(res detector.Result) error {
	fields := map[string]interface{}{
		"path":           res.Path,
		"protected":      res.Protected,
		"encrypted":      res.Encrypted,
		"confidence":     res.Confidence,
		"elapsedSeconds": res.Elapsed,
	}
	if res.Category != "" {
		fields["category"] = res.Category
	}
	if res.Error != "" {
		fields["error"] = res.Error
	}

	return e.Emit(Event{Type: "file-result", Fields: fields})
}
