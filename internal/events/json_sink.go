package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// JSONSink writes one JSON object per event, for scripting front-ends.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink returns a sink writing newline-delimited JSON to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

type wireEvent struct {
	Kind      Kind   `json:"kind"`
	Time      string `json:"ts"`
	RunID     string `json:"run_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Batch     int    `json:"batch,omitempty"`
	Batches   int    `json:"batches,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Item      string `json:"item,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Emit implements Sink. Encoding failures are dropped; the run must not stop
// because a consumer closed its pipe.
func (s *JSONSink) Emit(_ context.Context, ev Event) {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	wire := wireEvent{
		Kind:      ev.Kind,
		Time:      ts.UTC().Format(time.RFC3339Nano),
		RunID:     ev.RunID,
		Message:   ev.Message,
		Batch:     ev.Batch,
		Batches:   ev.Batches,
		BatchSize: ev.BatchSize,
		Completed: ev.Completed,
		Total:     ev.Total,
		Item:      ev.Item,
	}
	if ev.Err != nil {
		wire.Error = ev.Err.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(wire)
}
