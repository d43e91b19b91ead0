package sched

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/os-scheduling/os-sched/sched/trace"
)

// Simulator holds the shared scheduler state and runs the dispatcher loop.
//
// Every mutable field below mu (the clock, the ready queue, the termination
// flag, and every Process) is guarded by mu. cond is the single notification
// primitive: the dispatcher broadcasts a new tick, cores broadcast when they
// pass the tick on, and whoever detects that every process has terminated
// broadcasts so no goroutine waits for another tick.
type Simulator struct {
	Algorithm     Algorithm
	ContextSwitch int64
	TimeSlice     int64
	Tick          int64
	WallTick      time.Duration

	// Trace is nil unless Config.Trace enables decision recording.
	// Read it only after Run returns.
	Trace *trace.SimulationTrace

	policy   Policy
	reporter Reporter

	mu            sync.Mutex
	cond          *sync.Cond
	clock         int64
	epoch         int64 // ticks handed to the cores so far
	turn          int   // id of the core allowed to act in the current tick
	ready         ReadyQueue
	procs         []*Process // arena; the ready queue and cores hold indices into it
	cores         []*core
	terminated    int
	allTerminated bool
	completions   []int // arena indices in termination order
	started       bool

	// onTick runs with mu held at the end of every tick, after the cores acted.
	onTick func(now int64)
}

// NewSimulator validates cfg and builds the process population.
// reporter may be nil.
func NewSimulator(cfg Config, reporter Reporter) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &Simulator{
		Algorithm:     cfg.Algorithm,
		ContextSwitch: cfg.ContextSwitch,
		TimeSlice:     cfg.TimeSlice,
		Tick:          cfg.tick(),
		WallTick:      cfg.WallTick,
		policy:        NewPolicy(cfg.Algorithm, cfg.TimeSlice),
		reporter:      reporter,
		procs:         make([]*Process, 0, len(cfg.Processes)),
	}
	s.cond = sync.NewCond(&s.mu)
	if cfg.Trace.Enabled() {
		s.Trace = trace.NewSimulationTrace(cfg.Trace)
	}
	for _, d := range cfg.Processes {
		s.procs = append(s.procs, NewProcess(d))
	}
	s.cores = make([]*core, cfg.Cores)
	for i := range s.cores {
		s.cores[i] = newCore(i, s)
	}
	return s, nil
}

// Processes returns the process arena. Safe to inspect once Run has returned.
func (s *Simulator) Processes() []*Process {
	return s.procs
}

// Run starts one goroutine per core, drives the dispatcher loop on the calling
// goroutine until every process has terminated, joins the cores and returns
// the aggregate metrics. Run may be called once.
func (s *Simulator) Run() *Metrics {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		panic("Run: simulator already started")
	}
	s.started = true
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"algorithm": s.Algorithm,
		"cores":     len(s.cores),
		"processes": len(s.procs),
		"tick":      s.Tick,
	}).Info("starting simulation")
	startTime := time.Now()

	var wg sync.WaitGroup
	for _, c := range s.cores {
		wg.Add(1)
		go func(c *core) {
			defer wg.Done()
			c.run()
		}(c)
	}

	for {
		now, statuses, done := s.step()
		if s.reporter != nil {
			s.reporter.Report(now, statuses)
		}
		if done {
			break
		}
		if s.WallTick > 0 {
			time.Sleep(s.WallTick)
		}
		s.advance()
	}
	wg.Wait()

	m := s.metrics()
	logrus.Infof("Simulation complete at %d ms simulated (%s wall clock)", m.SimEndedTime, time.Since(startTime))
	return m
}

// step runs one dispatcher tick: timing update and admission for every live
// process, ready-queue ordering, preemption requests, then hands the tick to
// the cores in id order and waits for all of them to pass it on.
func (s *Simulator) step() (int64, []ProcessStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock
	s.admit(now)
	s.ready.Reorder(func(q []int) {
		s.policy.OrderQueue(q, s.procs)
	})
	s.requestPreemptions(now)

	if s.terminated == len(s.procs) {
		s.markAllTerminated()
	}
	if !s.allTerminated {
		s.epoch++
		s.turn = 0
		s.cond.Broadcast()
		for s.turn < len(s.cores) && !s.allTerminated {
			s.cond.Wait()
		}
	}
	if s.onTick != nil {
		s.onTick(now)
	}
	return now, s.snapshot(), s.allTerminated
}

func (s *Simulator) advance() {
	s.mu.Lock()
	s.clock += s.Tick
	s.mu.Unlock()
}

func (s *Simulator) admit(now int64) {
	for i, p := range s.procs {
		if p.State() == StateTerminated {
			continue
		}
		p.UpdateTiming(now)
		switch {
		case p.Admit(now):
			logrus.WithFields(logrus.Fields{"pid": p.PID, "clock": now}).Debug("process launched")
			s.ready.Push(i)
		case p.CompleteIO(now):
			logrus.WithFields(logrus.Fields{"pid": p.PID, "clock": now}).Debug("i/o burst complete")
			s.ready.Push(i)
		}
	}
}

func (s *Simulator) requestPreemptions(now int64) {
	idle := 0
	running := make([]*Process, 0, len(s.cores))
	for _, c := range s.cores {
		if c.current < 0 {
			idle++
			continue
		}
		running = append(running, s.procs[c.current])
	}
	if len(running) == 0 {
		return
	}
	ready := make([]*Process, 0, s.ready.Len())
	for _, idx := range s.ready.Items() {
		ready = append(ready, s.procs[idx])
	}
	for _, p := range s.policy.Preempt(running, ready, idle, now) {
		if !p.Interrupted() {
			logrus.WithFields(logrus.Fields{
				"pid":   p.PID,
				"core":  p.Core().OrElse(-1),
				"clock": now,
			}).Debug("preemption requested")
		}
		p.Interrupt()
	}
}

// requeue puts a preempted process back in the ready queue in policy order.
func (s *Simulator) requeue(idx int) {
	s.ready.Push(idx)
	s.ready.Reorder(func(q []int) {
		s.policy.OrderQueue(q, s.procs)
	})
}

// retire records a terminated process and ends the run once it was the last one.
func (s *Simulator) retire(idx int) {
	s.terminated++
	s.completions = append(s.completions, idx)
	if s.terminated == len(s.procs) {
		s.markAllTerminated()
	}
}

func (s *Simulator) markAllTerminated() {
	if s.allTerminated {
		return
	}
	s.allTerminated = true
	logrus.WithField("clock", s.clock).Debug("all processes terminated")
	s.cond.Broadcast()
}

func (s *Simulator) preemptionReason() string {
	switch s.Algorithm {
	case RR:
		return "time-slice"
	case PP:
		return "priority"
	default:
		return "interrupt"
	}
}

func (s *Simulator) snapshot() []ProcessStatus {
	out := make([]ProcessStatus, 0, len(s.procs))
	for _, p := range s.procs {
		if p.State() == StateNotStarted {
			continue
		}
		out = append(out, statusOf(p))
	}
	return out
}

// checkInvariants verifies the queue/state/core relationships. Called with mu held.
func (s *Simulator) checkInvariants() error {
	queued := make(map[int]int, s.ready.Len())
	for _, idx := range s.ready.Items() {
		queued[idx]++
	}
	owners := make(map[int]int)
	for _, c := range s.cores {
		if c.current >= 0 {
			owners[c.current]++
		}
	}
	for i, p := range s.procs {
		if n := queued[i]; n > 1 {
			return fmt.Errorf("pid %d queued %d times", p.PID, n)
		}
		if (queued[i] == 1) != (p.State() == StateReady) {
			return fmt.Errorf("pid %d is %s but queued=%v", p.PID, p.State(), queued[i] == 1)
		}
		if (owners[i] == 1) != (p.State() == StateRunning) || owners[i] > 1 {
			return fmt.Errorf("pid %d is %s but owned by %d cores", p.PID, p.State(), owners[i])
		}
		if p.Core().Present() != (p.State() == StateRunning) {
			return fmt.Errorf("pid %d is %s but core assignment present=%v", p.PID, p.State(), p.Core().Present())
		}
		if p.RemainingTime() < 0 || p.WaitTime() < 0 {
			return fmt.Errorf("pid %d has negative timing: remaining=%d wait=%d", p.PID, p.RemainingTime(), p.WaitTime())
		}
	}
	return nil
}
