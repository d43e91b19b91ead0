package sched

import "github.com/markphelps/optional"

// ProcessStatus is a point-in-time copy of one process's reportable fields.
type ProcessStatus struct {
	PID        int
	Priority   int
	State      ProcessState
	Core       optional.Int // empty = not on a core
	Turnaround int64        // ms
	Wait       int64        // ms
	CPU        int64        // ms
	Remaining  int64        // ms
}

// Reporter receives a status snapshot once per dispatcher tick.
// Snapshots contain every process that has left NotStarted, in configuration
// order. Report is called without the simulator's lock held.
type Reporter interface {
	Report(now int64, statuses []ProcessStatus)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(now int64, statuses []ProcessStatus)

func (f ReporterFunc) Report(now int64, statuses []ProcessStatus) {
	f(now, statuses)
}

func statusOf(p *Process) ProcessStatus {
	return ProcessStatus{
		PID:        p.PID,
		Priority:   p.Priority,
		State:      p.State(),
		Core:       p.Core(),
		Turnaround: p.TurnaroundTime(),
		Wait:       p.WaitTime(),
		CPU:        p.CPUTime(),
		Remaining:  p.RemainingTime(),
	}
}
