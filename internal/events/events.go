package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"oszimport/internal/logging"
)

// Kind identifies an event type.
type Kind string

const (
	KindStatus           Kind = "status"
	KindItemsFound       Kind = "items.found"
	KindBatchStarted     Kind = "batch.started"
	KindItemLaunchFailed Kind = "item.launch_failed"
	KindBatchCompleted   Kind = "batch.completed"
	KindItemImported     Kind = "item.imported"
	KindRunFinished      Kind = "run.finished"
	KindRunFailed        Kind = "run.failed"
	KindRunWarning       Kind = "run.warning"
)

// Terminal reports whether k ends a run.
func (k Kind) Terminal() bool {
	return k == KindRunFinished || k == KindRunFailed
}

// Event is a single status or progress notification.
type Event struct {
	Kind    Kind
	Time    time.Time
	RunID   string
	Message string
	// Batch is 1-based; zero when the event is not batch scoped.
	Batch     int
	Batches   int
	BatchSize int
	Completed int
	Total     int
	Item      string
	Err       error
}

// Sink receives events in emission order. Implementations must not block for
// long; the pipeline waits on Emit.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ctx context.Context, ev Event) { f(ctx, ev) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(context.Context, Event) {})

type multi []Sink

// Multi fans every event out to each non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Emit(ctx, ev)
	}
}

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the recorded kinds in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// Filter returns the recorded events of kind k.
func (r *Recorder) Filter(k Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

// LogSink mirrors events into structured logs.
type LogSink struct {
	Logger *slog.Logger
}

// Emit implements Sink.
func (s LogSink) Emit(ctx context.Context, ev Event) {
	if s.Logger == nil {
		return
	}
	logger := logging.WithContext(ctx, s.Logger)
	attrs := []logging.Attr{logging.String(logging.FieldEventType, string(ev.Kind))}
	if ev.Batch > 0 {
		attrs = append(attrs, logging.Int(logging.FieldBatch, ev.Batch))
	}
	if ev.Total > 0 {
		attrs = append(attrs,
			logging.Int("completed", ev.Completed),
			logging.Int("total", ev.Total),
		)
	}
	if ev.BatchSize > 0 {
		attrs = append(attrs, logging.Int("batch_size", ev.BatchSize))
	}
	if ev.Item != "" {
		attrs = append(attrs, logging.String(logging.FieldItem, ev.Item))
	}
	switch ev.Kind {
	case KindRunFailed:
		if ev.Err != nil {
			attrs = append(attrs, logging.Error(ev.Err))
		}
		logging.ErrorWithContext(logger, ev.Message, string(ev.Kind), attrs...)
	case KindRunWarning, KindItemLaunchFailed:
		if ev.Err != nil {
			attrs = append(attrs, logging.Error(ev.Err))
		}
		logging.WarnWithContext(logger, ev.Message, string(ev.Kind), attrs...)
	case KindBatchStarted, KindItemImported:
		logger.Debug(ev.Message, logging.Args(attrs...)...)
	default:
		logger.Info(ev.Message, logging.Args(attrs...)...)
	}
}
