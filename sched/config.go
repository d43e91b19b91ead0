package sched

import (
	"fmt"
	"time"

	"github.com/os-scheduling/os-sched/sched/trace"
)

// DefaultTick is the simulated time (ms) the dispatcher advances per tick.
const DefaultTick int64 = 50

// ProcessDescriptor describes one process as produced by the configuration loader.
type ProcessDescriptor struct {
	PID      int     // unique process identifier
	Arrival  int64   // ms after simulation start at which the process becomes eligible
	Priority int     // lower value = more urgent (PP only)
	Bursts   []int64 // alternating CPU/IO burst durations in ms, CPU first and last
}

// Config groups everything needed to build a Simulator.
type Config struct {
	Algorithm     Algorithm
	Cores         int           // number of simulated cores (must be > 0)
	ContextSwitch int64         // ms a core idles between processes
	TimeSlice     int64         // ms, RR only (must be > 0 for RR)
	Tick          int64         // simulated ms per dispatcher tick (0 = DefaultTick); divides ContextSwitch and RR TimeSlice
	WallTick      time.Duration // real time slept between ticks (0 = run as fast as possible)
	Processes     []ProcessDescriptor
	Trace         trace.TraceConfig
}

// Validate checks the configuration before any goroutine starts.
// The engine itself assumes a validated configuration.
func (c *Config) Validate() error {
	if !IsValidAlgorithm(string(c.Algorithm)) {
		return fmt.Errorf("unknown algorithm %q; valid: %s", c.Algorithm, validAlgorithmList())
	}
	if c.Cores <= 0 {
		return fmt.Errorf("cores must be positive, got %d", c.Cores)
	}
	if c.ContextSwitch < 0 {
		return fmt.Errorf("context_switch must be non-negative, got %d", c.ContextSwitch)
	}
	if c.TimeSlice < 0 {
		return fmt.Errorf("time_slice must be non-negative, got %d", c.TimeSlice)
	}
	if c.Algorithm == RR && c.TimeSlice == 0 {
		return fmt.Errorf("time_slice must be positive for %s", RR)
	}
	if c.Tick < 0 {
		return fmt.Errorf("tick must be non-negative, got %d", c.Tick)
	}
	// Cores only act on tick boundaries, so other durations must land on one.
	tick := c.tick()
	if c.ContextSwitch%tick != 0 {
		return fmt.Errorf("context_switch must be a multiple of tick (%d ms), got %d", tick, c.ContextSwitch)
	}
	if c.Algorithm == RR && c.TimeSlice%tick != 0 {
		return fmt.Errorf("time_slice must be a multiple of tick (%d ms), got %d", tick, c.TimeSlice)
	}
	if c.WallTick < 0 {
		return fmt.Errorf("wall tick must be non-negative, got %s", c.WallTick)
	}
	if !trace.IsValidTraceLevel(string(c.Trace.Level)) {
		return fmt.Errorf("unknown trace level %q", c.Trace.Level)
	}
	if len(c.Processes) == 0 {
		return fmt.Errorf("at least one process required")
	}
	seen := make(map[int]bool, len(c.Processes))
	for i := range c.Processes {
		if err := validateProcess(&c.Processes[i], i); err != nil {
			return err
		}
		if seen[c.Processes[i].PID] {
			return fmt.Errorf("processes[%d]: duplicate pid %d", i, c.Processes[i].PID)
		}
		seen[c.Processes[i].PID] = true
	}
	return nil
}

func validateProcess(d *ProcessDescriptor, idx int) error {
	prefix := fmt.Sprintf("processes[%d]", idx)
	if d.Arrival < 0 {
		return fmt.Errorf("%s: start_time must be non-negative, got %d", prefix, d.Arrival)
	}
	if len(d.Bursts) == 0 {
		return fmt.Errorf("%s: at least one burst required", prefix)
	}
	if len(d.Bursts)%2 == 0 {
		return fmt.Errorf("%s: burst count must be odd (CPU bursts first and last), got %d", prefix, len(d.Bursts))
	}
	for j, b := range d.Bursts {
		if b <= 0 {
			return fmt.Errorf("%s.bursts[%d] must be positive, got %d", prefix, j, b)
		}
	}
	return nil
}

func (c *Config) tick() int64 {
	if c.Tick == 0 {
		return DefaultTick
	}
	return c.Tick
}
