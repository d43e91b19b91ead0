// Defines the Process struct that models one simulated job in the scheduler.
// Tracks the burst sequence, lifecycle state, and the timestamps that turnaround,
// wait, CPU and remaining time are derived from.

package sched

import (
	"fmt"

	"github.com/markphelps/optional"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState int

const (
	StateNotStarted ProcessState = iota
	StateReady
	StateRunning
	StateIO
	StateTerminated
)

func (s ProcessState) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateIO:
		return "i/o"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Process models a single simulated job.
//
// Bursts alternate CPU, IO, CPU, ... and always start and end with a CPU burst.
// The cursor points at the active burst: a CPU burst while Ready or Running, an
// IO burst while in IO. When a running process is preempted, the unconsumed part
// of its CPU burst replaces that burst's duration.
//
// Process is not safe for concurrent use. Every method is called with the
// owning Simulator's mutex held.
type Process struct {
	PID      int
	Priority int   // lower value = more urgent
	Arrival  int64 // offset from simulation start at which the process becomes eligible

	bursts   []int64
	cursor   int
	totalCPU int64 // sum of all CPU bursts as configured

	state     ProcessState
	lastState ProcessState

	launched   bool
	launchTime int64 // first entry into Ready
	burstStart int64 // start of the current running episode or IO burst
	finishTime int64

	interrupted bool
	core        optional.Int // empty unless Running

	cpuCommitted int64 // CPU time from completed running episodes

	turnaround int64
	wait       int64
	cpu        int64
	remaining  int64

	preemptions int
	dispatches  int
}

// NewProcess creates a process in the NotStarted state from its descriptor.
// The descriptor's burst slice is copied; the descriptor is expected to have
// passed Config.Validate.
func NewProcess(d ProcessDescriptor) *Process {
	bursts := make([]int64, len(d.Bursts))
	copy(bursts, d.Bursts)
	p := &Process{
		PID:      d.PID,
		Priority: d.Priority,
		Arrival:  d.Arrival,
		bursts:   bursts,
		state:    StateNotStarted,
	}
	p.lastState = p.state
	for i := 0; i < len(bursts); i += 2 {
		p.totalCPU += bursts[i]
	}
	p.remaining = p.totalCPU
	return p
}

func (p *Process) State() ProcessState     { return p.state }
func (p *Process) LastState() ProcessState { return p.lastState }
func (p *Process) Interrupted() bool       { return p.interrupted }
func (p *Process) Core() optional.Int      { return p.core }
func (p *Process) LaunchTime() int64       { return p.launchTime }
func (p *Process) FinishTime() int64       { return p.finishTime }
func (p *Process) TurnaroundTime() int64   { return p.turnaround }
func (p *Process) WaitTime() int64         { return p.wait }
func (p *Process) CPUTime() int64          { return p.cpu }
func (p *Process) RemainingTime() int64    { return p.remaining }
func (p *Process) Preemptions() int        { return p.preemptions }
func (p *Process) Dispatches() int         { return p.dispatches }
func (p *Process) BurstIndex() int         { return p.cursor }
func (p *Process) IsLastBurst() bool       { return p.cursor >= len(p.bursts)-1 }

// CurrentBurst returns the duration of the active burst.
func (p *Process) CurrentBurst() int64 {
	return p.bursts[p.cursor]
}

// RunningFor returns how long the process has been in its current running episode.
// Returns 0 when the process is not Running.
func (p *Process) RunningFor(now int64) int64 {
	if p.state != StateRunning {
		return 0
	}
	return clampZero(now - p.burstStart)
}

// Interrupt requests preemption. The core running the process honors the
// request on its next turn; a process that is not Running ignores it.
func (p *Process) Interrupt() {
	if p.state == StateRunning {
		p.interrupted = true
	}
}

// Admit moves a NotStarted process to Ready once now reaches its arrival offset.
// Reports whether the transition happened.
func (p *Process) Admit(now int64) bool {
	if p.state != StateNotStarted || now < p.Arrival {
		return false
	}
	p.launched = true
	p.launchTime = now
	p.setState(StateReady)
	p.refresh(now)
	return true
}

// CompleteIO moves an IO process to Ready once its IO burst has elapsed,
// advancing the cursor to the next CPU burst. Reports whether the transition happened.
func (p *Process) CompleteIO(now int64) bool {
	if p.state != StateIO || now-p.burstStart < p.bursts[p.cursor] {
		return false
	}
	p.cursor++
	p.setState(StateReady)
	p.refresh(now)
	return true
}

// Dispatch moves a Ready process onto core.
func (p *Process) Dispatch(core int, now int64) {
	if p.state != StateReady {
		panic(fmt.Sprintf("Dispatch: process %d is %s, want ready", p.PID, p.state))
	}
	p.burstStart = now
	p.core = optional.NewInt(core)
	p.dispatches++
	p.setState(StateRunning)
	p.refresh(now)
}

// Yield applies the running transition due at now, if any, and reports whether
// the process left its core. A fully consumed burst wins over a pending
// interrupt: the process moves to IO, or to Terminated after its last burst.
// Otherwise a pending interrupt preempts it back to Ready with the unconsumed
// part of the burst kept for later.
func (p *Process) Yield(now int64) bool {
	if p.state != StateRunning {
		return false
	}
	elapsed := clampZero(now - p.burstStart)
	burst := p.bursts[p.cursor]
	switch {
	case elapsed >= burst:
		p.cpuCommitted += burst
		p.interrupted = false
		p.core = optional.Int{}
		if p.IsLastBurst() {
			p.setState(StateTerminated)
			p.refresh(now)
			p.finishTime = now
			return true
		}
		p.cursor++
		p.burstStart = now
		p.setState(StateIO)
	case p.interrupted:
		p.cpuCommitted += elapsed
		p.bursts[p.cursor] = burst - elapsed
		p.preemptions++
		p.interrupted = false
		p.core = optional.Int{}
		p.setState(StateReady)
	default:
		return false
	}
	p.refresh(now)
	return true
}

// UpdateTiming recomputes turnaround, wait, CPU and remaining time for now.
// Values are derived from timestamps, so repeated calls with the same now are
// idempotent. NotStarted and Terminated processes are left untouched.
func (p *Process) UpdateTiming(now int64) {
	if p.state == StateNotStarted || p.state == StateTerminated {
		return
	}
	p.refresh(now)
}

func (p *Process) refresh(now int64) {
	if !p.launched {
		return
	}
	p.turnaround = clampZero(now - p.launchTime)
	cpu := p.cpuCommitted
	if p.state == StateRunning {
		cpu += min(clampZero(now-p.burstStart), p.bursts[p.cursor])
	}
	p.cpu = cpu
	p.wait = clampZero(p.turnaround - cpu)
	p.remaining = clampZero(p.totalCPU - cpu)
}

func (p *Process) setState(s ProcessState) {
	p.lastState = p.state
	p.state = s
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// String summarizes the process for logs.
func (p *Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, Priority: %d, State: %s, Burst: %d/%d)", p.PID, p.Priority, p.state, p.cursor, len(p.bursts))
}
