package sched

import (
	"github.com/sirupsen/logrus"

	"github.com/os-scheduling/os-sched/sched/trace"
)

// core is the execution loop of one simulated CPU core.
// Its fields are guarded by the simulator's mutex.
type core struct {
	id          int
	sim         *Simulator
	current     int   // arena index of the running process, -1 when idle
	switchUntil int64 // the core accepts no process before this time
	seen        int64 // last tick this core acted on
}

func newCore(id int, s *Simulator) *core {
	return &core{id: id, sim: s, current: -1}
}

// run waits for each tick's turn, acts on it, and passes the turn to the next
// core. It returns once every process has terminated.
func (c *core) run() {
	s := c.sim
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		for !s.allTerminated && (s.turn != c.id || s.epoch == c.seen) {
			s.cond.Wait()
		}
		if s.allTerminated {
			return
		}
		c.seen = s.epoch
		c.step(s.clock)
		s.turn++
		s.cond.Broadcast()
	}
}

// step advances the running process, if any, and picks up the head of the
// ready queue when the core is free and past its context switch.
func (c *core) step(now int64) {
	s := c.sim
	if c.current >= 0 {
		p := s.procs[c.current]
		consumed := p.RunningFor(now)
		if !p.Yield(now) {
			return
		}
		c.release(p, now, consumed)
	}
	if now < c.switchUntil || s.allTerminated {
		return
	}
	idx, ok := s.ready.Pop()
	if !ok {
		return
	}
	p := s.procs[idx]
	p.Dispatch(c.id, now)
	c.current = idx
	logrus.WithFields(logrus.Fields{"pid": p.PID, "core": c.id, "clock": now}).Debug("dispatched")
	if s.Trace != nil {
		s.Trace.RecordDispatch(trace.DispatchRecord{PID: p.PID, Core: c.id, Clock: now})
	}
}

// release hands the process that just left this core to wherever its new
// state belongs and starts the context switch.
func (c *core) release(p *Process, now, consumed int64) {
	s := c.sim
	idx := c.current
	c.current = -1
	c.switchUntil = now + s.ContextSwitch

	fields := logrus.Fields{"pid": p.PID, "core": c.id, "clock": now}
	switch p.State() {
	case StateReady:
		s.requeue(idx)
		logrus.WithFields(fields).WithField("left", p.CurrentBurst()).Debug("preempted")
		if s.Trace != nil {
			s.Trace.RecordPreemption(trace.PreemptionRecord{
				PID:      p.PID,
				Core:     c.id,
				Clock:    now,
				Consumed: consumed,
				Left:     p.CurrentBurst(),
				Reason:   s.preemptionReason(),
			})
		}
		return
	case StateIO:
		logrus.WithFields(fields).Debug("cpu burst complete, entering i/o")
	case StateTerminated:
		logrus.WithFields(fields).Debug("terminated")
		s.retire(idx)
	}
	if s.Trace != nil {
		s.Trace.RecordCompletion(trace.CompletionRecord{PID: p.PID, Core: c.id, Clock: now, NextState: p.State().String()})
	}
}
