package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"oszimport/internal/events"
)

// consoleSink renders run events for a person at a terminal. On a TTY a
// progress bar tracks completed items and batch chatter goes into its
// description; otherwise every event becomes a line.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
	p   palette
	bar *progressbar.ProgressBar
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out, p: newPalette(out)}
}

func (s *consoleSink) Emit(_ context.Context, ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case events.KindItemsFound:
		s.println(s.p.paint(statusInfo, ev.Message))
		if ev.Total > 0 {
			s.bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionSetWriter(s.out),
				progressbar.OptionSetVisibility(s.p.enabled),
				progressbar.OptionSetDescription("importing"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(false),
				progressbar.OptionClearOnFinish(),
			)
		}
	case events.KindBatchStarted, events.KindItemImported:
		if s.barVisible() {
			s.bar.Describe(ev.Message)
			return
		}
		s.println(ev.Message)
	case events.KindBatchCompleted:
		if s.barVisible() {
			_ = s.bar.Set(ev.Completed)
			return
		}
		s.println(ev.Message)
	case events.KindItemLaunchFailed, events.KindRunWarning:
		s.println(s.p.paint(statusWarn, withError(ev)))
	case events.KindStatus:
		s.println(s.p.faint(ev.Message))
	case events.KindRunFinished:
		s.closeBar(true)
		s.println(s.p.paint(statusOK, ev.Message))
	case events.KindRunFailed:
		s.closeBar(false)
		s.println(s.p.paint(statusError, ev.Message))
	}
}

// workers updates the bar while a batch drains. Without a bar it stays quiet.
func (s *consoleSink) workers(batch, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.barVisible() {
		s.bar.Describe(fmt.Sprintf("batch %d: %d worker(s) busy", batch, count))
	}
}

func (s *consoleSink) barVisible() bool {
	return s.bar != nil && s.p.enabled
}

func (s *consoleSink) closeBar(finished bool) {
	if s.bar == nil {
		return
	}
	if finished {
		_ = s.bar.Finish()
	} else {
		_ = s.bar.Exit()
	}
	_ = s.bar.Clear()
	s.bar = nil
}

func (s *consoleSink) println(line string) {
	if s.barVisible() {
		_ = s.bar.Clear()
	}
	fmt.Fprintln(s.out, line)
}

func withError(ev events.Event) string {
	if ev.Err == nil {
		return ev.Message
	}
	return fmt.Sprintf("%s: %v", ev.Message, ev.Err)
}
