package procmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"
)

// Process is the subset of process inspection the monitor relies on.
type Process interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	RSS(ctx context.Context) (uint64, error)
}

// Source enumerates the OS process table.
type Source interface {
	Processes(ctx context.Context) ([]Process, error)
}

// SystemSource reads the live process table through gopsutil.
type SystemSource struct{}

// Processes implements Source.
func (SystemSource) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, systemProcess{p: p})
	}
	return out, nil
}

type systemProcess struct {
	p *process.Process
}

func (s systemProcess) PID() int32 { return s.p.Pid }

func (s systemProcess) Name(ctx context.Context) (string, error) {
	return s.p.NameWithContext(ctx)
}

func (s systemProcess) RSS(ctx context.Context) (uint64, error) {
	info, err := s.p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
