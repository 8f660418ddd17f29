package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"oszimport/internal/services"
)

func sequenceCounter(values ...int) (WorkerCounter, *atomic.Int32) {
	var calls atomic.Int32
	return CounterFunc(func(context.Context) (int, error) {
		i := int(calls.Add(1)) - 1
		if i >= len(values) {
			return values[len(values)-1], nil
		}
		return values[i], nil
	}), &calls
}

func TestWaitForZeroReturnsWhenDrained(t *testing.T) {
	counter, calls := sequenceCounter(3, 2, 1, 0)
	var seen []int
	err := WaitForZero(context.Background(), counter, WaitOptions{
		Interval: time.Millisecond,
		OnSample: func(n int) { seen = append(seen, n) },
	})
	if err != nil {
		t.Fatalf("WaitForZero returned error: %v", err)
	}
	if calls.Load() != 4 {
		t.Fatalf("calls = %d, want 4", calls.Load())
	}
	if len(seen) != 4 || seen[3] != 0 {
		t.Fatalf("samples = %v", seen)
	}
}

func TestWaitForZeroImmediateZero(t *testing.T) {
	counter, calls := sequenceCounter(0)
	if err := WaitForZero(context.Background(), counter, WaitOptions{Interval: time.Hour}); err != nil {
		t.Fatalf("WaitForZero returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestWaitForZeroTimesOut(t *testing.T) {
	counter, _ := sequenceCounter(1)
	err := WaitForZero(context.Background(), counter, WaitOptions{
		Interval: time.Millisecond,
		Timeout:  20 * time.Millisecond,
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestWaitForZeroCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	counter := CounterFunc(func(context.Context) (int, error) {
		cancel()
		return 2, nil
	})
	err := WaitForZero(ctx, counter, WaitOptions{Interval: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForZeroContinuesAfterSampleFailure(t *testing.T) {
	var calls atomic.Int32
	counter := CounterFunc(func(context.Context) (int, error) {
		switch calls.Add(1) {
		case 1, 2:
			return 0, errors.New("enumeration failed")
		default:
			return 0, nil
		}
	})
	if err := WaitForZero(context.Background(), counter, WaitOptions{Interval: time.Millisecond}); err != nil {
		t.Fatalf("WaitForZero returned error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestWaitForZeroSettleDelaysFirstSample(t *testing.T) {
	counter, _ := sequenceCounter(0)
	start := time.Now()
	if err := WaitForZero(context.Background(), counter, WaitOptions{Settle: 30 * time.Millisecond}); err != nil {
		t.Fatalf("WaitForZero returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("first sample after %s, want settle delay", elapsed)
	}
}

func TestWaitForZeroTimeoutDuringSettle(t *testing.T) {
	counter, calls := sequenceCounter(0)
	err := WaitForZero(context.Background(), counter, WaitOptions{Settle: time.Hour, Timeout: 10 * time.Millisecond})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("counter sampled during settle")
	}
}
