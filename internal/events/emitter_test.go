package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/example/lockscan/internal/detector"
)

func TestEmitStampsRunIDAndTimestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf, "run-123")

	if err := emitter.Emit(Event{Type: "scan-start", Message: "Starting scan"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	if decoded.RunID != "run-123" {
		t.Fatalf("expected run id run-123, got %q", decoded.RunID)
	}
	if decoded.Timestamp.IsZero() {
		t.Fatal("timestamp should be stamped automatically")
	}
}

func TestFileResultCarriesClassification(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf, "run-1")

	res := detector.Result{
		Path:       "/tmp/locked.pdf",
		Protected:  true,
		Encrypted:  true,
		Confidence: 1.0,
		Category:   "pdf",
		Elapsed:    0.01,
	}
	if err := emitter.FileResult(res); err != nil {
		t.Fatalf("emit file result: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	if decoded.Type != "file-result" {
		t.Fatalf("expected file-result type, got %q", decoded.Type)
	}
	if decoded.Fields["protected"] != true || decoded.Fields["category"] != "pdf" {
		t.Fatalf("unexpected fields: %#v", decoded.Fields)
	}
}

func TestEmitterIsSafeForConcurrentUse(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf, "run-1")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = emitter.Emit(Event{Type: "file-result"})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 32 {
		t.Fatalf("expected 32 intact lines, got %d", len(lines))
	}
	for _, line := range lines {
		var decoded Event
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("interleaved write produced invalid JSON: %v", err)
		}
	}
}
