package events_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"oszimport/internal/events"
	"oszimport/internal/logging"
)

func TestMultiFansOutInOrder(t *testing.T) {
	var a, b events.Recorder
	var order []string
	sink := events.Multi(
		&a,
		nil,
		events.SinkFunc(func(_ context.Context, ev events.Event) { order = append(order, "func:"+string(ev.Kind)) }),
		&b,
	)

	sink.Emit(context.Background(), events.Event{Kind: events.KindItemsFound, Total: 3})
	sink.Emit(context.Background(), events.Event{Kind: events.KindRunFinished})

	want := []events.Kind{events.KindItemsFound, events.KindRunFinished}
	if !reflect.DeepEqual(a.Kinds(), want) || !reflect.DeepEqual(b.Kinds(), want) {
		t.Fatalf("recorders saw %v and %v", a.Kinds(), b.Kinds())
	}
	if len(order) != 2 {
		t.Fatalf("func sink saw %v", order)
	}
}

func TestRecorderFilter(t *testing.T) {
	var rec events.Recorder
	rec.Emit(context.Background(), events.Event{Kind: events.KindBatchCompleted, Completed: 5})
	rec.Emit(context.Background(), events.Event{Kind: events.KindItemImported})
	rec.Emit(context.Background(), events.Event{Kind: events.KindBatchCompleted, Completed: 7})

	got := rec.Filter(events.KindBatchCompleted)
	if len(got) != 2 || got[1].Completed != 7 {
		t.Fatalf("unexpected filter result %+v", got)
	}
}

func TestTerminalKinds(t *testing.T) {
	if !events.KindRunFinished.Terminal() || !events.KindRunFailed.Terminal() {
		t.Fatal("run.finished and run.failed must be terminal")
	}
	if events.KindRunWarning.Terminal() || events.KindBatchCompleted.Terminal() {
		t.Fatal("non-terminal kinds reported terminal")
	}
}

func TestJSONSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := events.NewJSONSink(&buf)
	sink.Emit(context.Background(), events.Event{Kind: events.KindBatchCompleted, Batch: 1, Completed: 5, Total: 12})
	sink.Emit(context.Background(), events.Event{Kind: events.KindRunFailed, Message: "failed", Err: errors.New("timeout")})

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("decode %q: %v", scanner.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0]["kind"] != "batch.completed" || lines[0]["completed"] != float64(5) || lines[0]["total"] != float64(12) {
		t.Fatalf("unexpected first line %v", lines[0])
	}
	if lines[1]["error"] != "timeout" {
		t.Fatalf("unexpected second line %v", lines[1])
	}
	if _, ok := lines[0]["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	sink := events.LogSink{Logger: logger}

	sink.Emit(context.Background(), events.Event{Kind: events.KindBatchStarted, Message: "batch 1"})
	sink.Emit(context.Background(), events.Event{Kind: events.KindRunWarning, Message: "cleanup incomplete", Err: errors.New("locked")})
	sink.Emit(context.Background(), events.Event{Kind: events.KindRunFinished, Message: "finished: 3/3 successful", Completed: 3, Total: 3})

	out := buf.String()
	if strings.Contains(out, "batch 1") {
		t.Fatalf("batch.started should log at debug, got %q", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"error":"locked"`) {
		t.Fatalf("expected warning with error, got %q", out)
	}
	if !strings.Contains(out, `"event_type":"run.finished"`) {
		t.Fatalf("expected run.finished record, got %q", out)
	}
}
