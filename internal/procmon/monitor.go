package procmon

import (
	"context"
	"fmt"
	"log/slog"

	"oszimport/internal/logging"
	"oszimport/internal/services"
)

// Monitor applies the worker heuristic to a process Source.
type Monitor struct {
	// Name is compared exactly against each process name.
	Name string
	// Threshold is the exclusive upper bound on worker resident memory, in bytes.
	Threshold uint64
	Source    Source
	Logger    *slog.Logger
}

// Sample describes one process matching the monitored name.
type Sample struct {
	PID    int32  `json:"pid"`
	RSS    uint64 `json:"rss_bytes"`
	Worker bool   `json:"worker"`
}

// New constructs a Monitor over the live process table.
func New(name string, threshold uint64, logger *slog.Logger) *Monitor {
	return &Monitor{
		Name:      name,
		Threshold: threshold,
		Source:    SystemSource{},
		Logger:    logging.NewComponentLogger(logger, "procmon"),
	}
}

// Count returns the number of processes currently classified as import
// workers. The result is never negative.
func (m *Monitor) Count(ctx context.Context) (int, error) {
	samples, err := m.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, s := range samples {
		if s.Worker {
			count++
		}
	}
	return count, nil
}

// Snapshot returns every live process whose name matches, with its resident
// memory and classification.
func (m *Monitor) Snapshot(ctx context.Context) ([]Sample, error) {
	source := m.Source
	if source == nil {
		source = SystemSource{}
	}
	procs, err := source.Processes(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrProcessInspection, "procmon", "enumerate", "list processes", err)
	}

	var samples []Sample
	for _, p := range procs {
		name, err := p.Name(ctx)
		if err != nil {
			m.skip(p.PID(), "read name", err)
			continue
		}
		if name != m.Name {
			continue
		}
		rss, err := p.RSS(ctx)
		if err != nil {
			m.skip(p.PID(), "read memory", err)
			continue
		}
		samples = append(samples, Sample{PID: p.PID(), RSS: rss, Worker: rss < m.Threshold})
	}
	return samples, nil
}

func (m *Monitor) skip(pid int32, op string, err error) {
	if m.Logger == nil {
		return
	}
	wrapped := services.Wrap(services.ErrProcessInspection, "procmon", op, fmt.Sprintf("pid %d", pid), err)
	m.Logger.Debug("process skipped",
		logging.Int64("pid", int64(pid)),
		logging.Error(wrapped),
		logging.String(logging.FieldEventType, "process_inspection_skipped"),
	)
}
