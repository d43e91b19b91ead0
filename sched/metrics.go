// Tracks simulation-wide and per-process scheduling metrics such as
// CPU utilization, throughput, turnaround and wait time.

package sched

import (
	"gonum.org/v1/gonum/stat"
)

// ProcessStats is the final accounting for one process.
type ProcessStats struct {
	PID         int
	Priority    int
	LaunchTime  int64 // ms
	FinishTime  int64 // ms
	Turnaround  int64 // ms
	Wait        int64 // ms
	CPU         int64 // ms
	Preemptions int
	Dispatches  int
}

// Metrics aggregates statistics about a finished run for final reporting.
type Metrics struct {
	Algorithm          Algorithm
	Cores              int
	CompletedProcesses int
	SimEndedTime       int64 // ms of simulated time when the last process terminated
	TotalCPUTime       int64 // ms
	TotalTurnaround    int64 // ms

	CPUUtilization       float64 // percent: total CPU time / total turnaround time
	ThroughputFirstHalf  float64 // processes/s over the first half of completions
	ThroughputSecondHalf float64 // processes/s over the second half of completions
	ThroughputOverall    float64 // processes/s over the whole run
	AvgTurnaround        float64 // ms
	AvgWait              float64 // ms

	// Processes in completion order.
	Processes []ProcessStats
}

// metrics is called after every core goroutine has been joined.
func (s *Simulator) metrics() *Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &Metrics{
		Algorithm:          s.Algorithm,
		Cores:              len(s.cores),
		CompletedProcesses: len(s.completions),
		Processes:          make([]ProcessStats, 0, len(s.completions)),
	}
	turnarounds := make([]float64, 0, len(s.completions))
	waits := make([]float64, 0, len(s.completions))
	finishes := make([]int64, 0, len(s.completions))
	for _, idx := range s.completions {
		p := s.procs[idx]
		m.Processes = append(m.Processes, ProcessStats{
			PID:         p.PID,
			Priority:    p.Priority,
			LaunchTime:  p.LaunchTime(),
			FinishTime:  p.FinishTime(),
			Turnaround:  p.TurnaroundTime(),
			Wait:        p.WaitTime(),
			CPU:         p.CPUTime(),
			Preemptions: p.Preemptions(),
			Dispatches:  p.Dispatches(),
		})
		m.TotalCPUTime += p.CPUTime()
		m.TotalTurnaround += p.TurnaroundTime()
		turnarounds = append(turnarounds, float64(p.TurnaroundTime()))
		waits = append(waits, float64(p.WaitTime()))
		finishes = append(finishes, p.FinishTime())
	}
	if len(finishes) == 0 {
		return m
	}
	m.SimEndedTime = finishes[len(finishes)-1]
	if m.TotalTurnaround > 0 {
		m.CPUUtilization = 100 * float64(m.TotalCPUTime) / float64(m.TotalTurnaround)
	}
	m.ThroughputFirstHalf, m.ThroughputSecondHalf, m.ThroughputOverall = Throughput(finishes, s.Tick)
	m.AvgTurnaround = stat.Mean(turnarounds, nil)
	m.AvgWait = stat.Mean(waits, nil)
	return m
}

// Throughput computes processes per second from completion times (ms, in
// completion order, measured from simulation start). The first half holds the
// first ceil(n/2) completions and is measured from time 0; the second half is
// measured from the last completion of the first half. Spans shorter than
// minSpan are widened to minSpan so simultaneous completions stay finite.
func Throughput(finishes []int64, minSpan int64) (first, second, overall float64) {
	n := len(finishes)
	if n == 0 {
		return 0, 0, 0
	}
	half := (n + 1) / 2
	rate := func(count int, span int64) float64 {
		if count == 0 {
			return 0
		}
		span = max(span, minSpan, 1)
		return float64(count) / (float64(span) / 1000)
	}
	mid := finishes[half-1]
	last := finishes[n-1]
	return rate(half, mid), rate(n-half, last-mid), rate(n, last)
}
