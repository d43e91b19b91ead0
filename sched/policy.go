package sched

import (
	"fmt"
	"sort"
	"strings"
)

// Algorithm selects the scheduling policy.
type Algorithm string

const (
	FCFS Algorithm = "FCFS" // first come first served
	SJF  Algorithm = "SJF"  // shortest job first, non-preemptive
	PP   Algorithm = "PP"   // preemptive priority
	RR   Algorithm = "RR"   // round robin
)

var validAlgorithms = map[Algorithm]bool{
	FCFS: true,
	SJF:  true,
	PP:   true,
	RR:   true,
}

// IsValidAlgorithm reports whether name is a recognized algorithm (exact, upper case).
func IsValidAlgorithm(name string) bool {
	return validAlgorithms[Algorithm(name)]
}

// ParseAlgorithm resolves a case-insensitive algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToUpper(strings.TrimSpace(name)))
	if !validAlgorithms[a] {
		return "", fmt.Errorf("unknown algorithm %q; valid: %s", name, validAlgorithmList())
	}
	return a, nil
}

func validAlgorithmList() string {
	return "FCFS, SJF, PP, RR"
}

// Policy orders the ready queue and decides which running processes should be
// asked to give up their core. Both methods are called by the dispatcher with
// the simulator's mutex held.
type Policy interface {
	// OrderQueue sorts queue (indices into procs) in-place. Implementations
	// use sort.SliceStable so equal keys keep queue order.
	OrderQueue(queue []int, procs []*Process)

	// Preempt returns the running processes whose interrupt flag should be set.
	// ready is in queue order; idleCores is the number of cores with no process,
	// which will absorb the head of the queue without preempting anyone.
	Preempt(running, ready []*Process, idleCores int, now int64) []*Process
}

// FCFSPolicy keeps append order and never preempts.
type FCFSPolicy struct{}

func (f *FCFSPolicy) OrderQueue(_ []int, _ []*Process) {
	// No-op: FIFO order preserved from enqueue order
}

func (f *FCFSPolicy) Preempt(_, _ []*Process, _ int, _ int64) []*Process {
	return nil
}

// SJFPolicy sorts by remaining CPU time (ascending). Ties keep queue order.
// Non-preemptive: a running process keeps its core until its burst ends.
// Warning: SJF can starve long processes under sustained load.
type SJFPolicy struct{}

func (s *SJFPolicy) OrderQueue(queue []int, procs []*Process) {
	sort.SliceStable(queue, func(i, j int) bool {
		return procs[queue[i]].RemainingTime() < procs[queue[j]].RemainingTime()
	})
}

func (s *SJFPolicy) Preempt(_, _ []*Process, _ int, _ int64) []*Process {
	return nil
}

// PriorityPolicy sorts by priority (lower value first), then by launch time
// (earlier first); remaining ties keep queue order.
// A running process is preempted when a queued process has a strictly lower
// priority value and no idle core can take that process instead.
type PriorityPolicy struct{}

func (pp *PriorityPolicy) OrderQueue(queue []int, procs []*Process) {
	sort.SliceStable(queue, func(i, j int) bool {
		return outranks(procs[queue[i]], procs[queue[j]])
	})
}

func (pp *PriorityPolicy) Preempt(running, ready []*Process, idleCores int, _ int64) []*Process {
	if len(ready) <= idleCores || len(running) == 0 {
		return nil
	}
	contenders := ready[idleCores:]

	// Least urgent running process first: it is the one to give way.
	victims := make([]*Process, len(running))
	copy(victims, running)
	sort.SliceStable(victims, func(i, j int) bool {
		return outranks(victims[j], victims[i])
	})

	var out []*Process
	for i, c := range contenders {
		if i >= len(victims) || c.Priority >= victims[i].Priority {
			break
		}
		out = append(out, victims[i])
	}
	return out
}

func outranks(a, b *Process) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.LaunchTime() < b.LaunchTime()
}

// RoundRobinPolicy keeps append order and preempts any process whose current
// running episode has reached TimeSlice, whether or not anything is waiting.
type RoundRobinPolicy struct {
	TimeSlice int64
}

func (r *RoundRobinPolicy) OrderQueue(_ []int, _ []*Process) {
	// No-op: preempted processes rejoin at the back
}

func (r *RoundRobinPolicy) Preempt(running, _ []*Process, _ int, now int64) []*Process {
	var out []*Process
	for _, p := range running {
		if p.RunningFor(now) >= r.TimeSlice {
			out = append(out, p)
		}
	}
	return out
}

// NewPolicy creates a Policy for the given algorithm.
// Panics on unrecognized algorithms; Config.Validate rejects them first.
func NewPolicy(alg Algorithm, timeSlice int64) Policy {
	switch alg {
	case FCFS:
		return &FCFSPolicy{}
	case SJF:
		return &SJFPolicy{}
	case PP:
		return &PriorityPolicy{}
	case RR:
		return &RoundRobinPolicy{TimeSlice: timeSlice}
	default:
		panic(fmt.Sprintf("unknown algorithm %q", alg))
	}
}
