package sched

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/os-scheduling/os-sched/sched/trace"
)

// runSim builds and runs a traced simulation, checking the queue/state/core
// invariants at the end of every tick. Fails the test if the run hangs.
func runSim(t *testing.T, cfg Config, reporter Reporter) (*Simulator, *Metrics) {
	t.Helper()
	cfg.Trace = trace.TraceConfig{Level: trace.TraceLevelDecisions}
	s, err := NewSimulator(cfg, reporter)
	require.NoError(t, err)
	s.onTick = func(now int64) {
		if err := s.checkInvariants(); err != nil {
			t.Errorf("tick %d: %v", now, err)
		}
	}

	done := make(chan *Metrics, 1)
	go func() { done <- s.Run() }()
	select {
	case m := <-done:
		return s, m
	case <-time.After(30 * time.Second):
		t.Fatal("simulation did not terminate")
		return nil, nil
	}
}

func procByPID(t *testing.T, s *Simulator, pid int) *Process {
	t.Helper()
	for _, p := range s.Processes() {
		if p.PID == pid {
			return p
		}
	}
	t.Fatalf("pid %d not found", pid)
	return nil
}

func TestSimulator_FCFS_SingleCore_EndToEnd(t *testing.T) {
	// GIVEN 1 core, FCFS, P1 [10] and P2 [5], both arriving at 0
	cfg := Config{
		Algorithm: FCFS,
		Cores:     1,
		Tick:      1,
		Processes: []ProcessDescriptor{
			{PID: 1, Bursts: []int64{10}},
			{PID: 2, Bursts: []int64{5}},
		},
	}

	// WHEN the simulation runs
	s, m := runSim(t, cfg, nil)

	// THEN P1 is dispatched before P2 and both terminate
	assert.Equal(t, []int{1, 2}, s.Trace.DispatchOrder())
	for _, p := range s.Processes() {
		assert.Equal(t, StateTerminated, p.State(), "pid %d", p.PID)
	}

	// AND the run used exactly 15 ms of CPU
	assert.Equal(t, int64(15), m.TotalCPUTime)
	assert.Equal(t, 2, m.CompletedProcesses)
	assert.Equal(t, int64(15), m.SimEndedTime)
	assert.Equal(t, int64(10), procByPID(t, s, 2).WaitTime())
	assert.InDelta(t, 60.0, m.CPUUtilization, 1e-9)
	assert.InDelta(t, 12.5, m.AvgTurnaround, 1e-9)
	assert.InDelta(t, 5.0, m.AvgWait, 1e-9)
}

func TestSimulator_RR_PreemptsAtEachSlice(t *testing.T) {
	// GIVEN a single 100 ms burst and a 30 ms time slice
	cfg := Config{
		Algorithm: RR,
		Cores:     1,
		TimeSlice: 30,
		Tick:      10,
		Processes: []ProcessDescriptor{{PID: 1, Bursts: []int64{100}}},
	}

	// WHEN the simulation runs
	s, _ := runSim(t, cfg, nil)

	// THEN the process is preempted exactly three times before its final 10 ms
	p := procByPID(t, s, 1)
	assert.Equal(t, 3, p.Preemptions())
	require.Len(t, s.Trace.Preemptions, 3)
	var left []int64
	for _, r := range s.Trace.Preemptions {
		left = append(left, r.Left)
		assert.Equal(t, int64(30), r.Consumed)
		assert.Equal(t, "time-slice", r.Reason)
	}
	assert.Equal(t, []int64{70, 40, 10}, left)

	// AND it terminates once the last 10 ms are consumed
	assert.Equal(t, StateTerminated, p.State())
	assert.Equal(t, int64(100), p.FinishTime())
	assert.Equal(t, int64(100), p.CPUTime())
	assert.Equal(t, 4, p.Dispatches())
}

func TestSimulator_RR_RotatesReadyProcesses(t *testing.T) {
	cfg := Config{
		Algorithm: RR,
		Cores:     1,
		TimeSlice: 20,
		Tick:      10,
		Processes: []ProcessDescriptor{
			{PID: 1, Bursts: []int64{40}},
			{PID: 2, Bursts: []int64{30}},
		},
	}

	s, _ := runSim(t, cfg, nil)

	// 1 runs 0-20, 2 runs 20-40, 1 finishes 40-60, 2 finishes 60-70
	assert.Equal(t, []int{1, 2, 1, 2}, s.Trace.DispatchOrder())
	assert.Equal(t, int64(60), procByPID(t, s, 1).FinishTime())
	assert.Equal(t, int64(70), procByPID(t, s, 2).FinishTime())
}

func TestSimulator_SJF_DispatchesShortestFirst(t *testing.T) {
	// GIVEN a blocker holding the only core while processes with remaining
	// times [5, 2, 8] arrive
	cfg := Config{
		Algorithm: SJF,
		Cores:     1,
		Tick:      1,
		Processes: []ProcessDescriptor{
			{PID: 100, Bursts: []int64{10}},
			{PID: 1, Arrival: 1, Bursts: []int64{5}},
			{PID: 2, Arrival: 1, Bursts: []int64{2}},
			{PID: 3, Arrival: 1, Bursts: []int64{8}},
		},
	}

	s, _ := runSim(t, cfg, nil)

	// THEN they are dispatched in order [2, 5, 8] and nothing is preempted
	assert.Equal(t, []int{100, 2, 1, 3}, s.Trace.DispatchOrder())
	assert.Empty(t, s.Trace.Preemptions)
}

func TestSimulator_PP_DispatchesByPriorityThenLaunch(t *testing.T) {
	// GIVEN priorities [3, 1, 1] queued behind a most-urgent blocker, with the
	// second priority-1 process launched earlier than the first
	cfg := Config{
		Algorithm: PP,
		Cores:     1,
		Tick:      1,
		Processes: []ProcessDescriptor{
			{PID: 100, Priority: 0, Bursts: []int64{10}},
			{PID: 1, Priority: 3, Arrival: 1, Bursts: []int64{5}},
			{PID: 2, Priority: 1, Arrival: 3, Bursts: []int64{5}},
			{PID: 3, Priority: 1, Arrival: 2, Bursts: []int64{5}},
		},
	}

	s, _ := runSim(t, cfg, nil)

	assert.Equal(t, []int{100, 3, 2, 1}, s.Trace.DispatchOrder())
	assert.Empty(t, s.Trace.Preemptions, "equal or lower urgency must not preempt")
}

func TestSimulator_PP_MoreUrgentArrivalPreempts(t *testing.T) {
	// GIVEN a low-urgency process running when a more urgent one arrives
	cfg := Config{
		Algorithm: PP,
		Cores:     1,
		Tick:      10,
		Processes: []ProcessDescriptor{
			{PID: 1, Priority: 5, Bursts: []int64{50}},
			{PID: 2, Priority: 1, Arrival: 20, Bursts: []int64{10}},
		},
	}

	s, _ := runSim(t, cfg, nil)

	// THEN the running process yields immediately and resumes afterwards
	assert.Equal(t, []int{1, 2, 1}, s.Trace.DispatchOrder())
	require.Len(t, s.Trace.Preemptions, 1)
	assert.Equal(t, trace.PreemptionRecord{PID: 1, Core: 0, Clock: 20, Consumed: 20, Left: 30, Reason: "priority"}, s.Trace.Preemptions[0])

	low := procByPID(t, s, 1)
	assert.Equal(t, int64(60), low.FinishTime())
	assert.Equal(t, int64(50), low.CPUTime())
	assert.Equal(t, int64(10), low.WaitTime())
	high := procByPID(t, s, 2)
	assert.Equal(t, int64(10), high.TurnaroundTime())
	assert.Equal(t, int64(0), high.WaitTime())
}

func TestSimulator_ContextSwitch_NotChargedToProcesses(t *testing.T) {
	cfg := Config{
		Algorithm:     FCFS,
		Cores:         1,
		ContextSwitch: 5,
		Tick:          1,
		Processes: []ProcessDescriptor{
			{PID: 1, Bursts: []int64{10}},
			{PID: 2, Bursts: []int64{10}},
		},
	}

	s, m := runSim(t, cfg, nil)

	require.Len(t, s.Trace.Dispatches, 2)
	assert.Equal(t, int64(0), s.Trace.Dispatches[0].Clock)
	assert.Equal(t, int64(15), s.Trace.Dispatches[1].Clock)
	assert.Equal(t, int64(20), m.TotalCPUTime)
	assert.Equal(t, int64(15), procByPID(t, s, 2).WaitTime())
}

func TestSimulator_IOBursts_ReturnToReady(t *testing.T) {
	// GIVEN one process with CPU 10, IO 20, CPU 10 on one core
	cfg := Config{
		Algorithm: FCFS,
		Cores:     1,
		Tick:      5,
		Processes: []ProcessDescriptor{{PID: 1, Bursts: []int64{10, 20, 10}}},
	}

	s, _ := runSim(t, cfg, nil)

	// THEN it is dispatched again once its IO completes
	require.Len(t, s.Trace.Dispatches, 2)
	assert.Equal(t, int64(30), s.Trace.Dispatches[1].Clock)
	p := procByPID(t, s, 1)
	assert.Equal(t, int64(40), p.FinishTime())
	assert.Equal(t, int64(20), p.CPUTime())
	assert.Equal(t, int64(20), p.WaitTime())
	require.Len(t, s.Trace.Completions, 2)
	assert.Equal(t, "i/o", s.Trace.Completions[0].NextState)
	assert.Equal(t, "terminated", s.Trace.Completions[1].NextState)
}

// mixedWorkload builds n processes with IO bursts and staggered arrivals.
func mixedWorkload(n int) []ProcessDescriptor {
	out := make([]ProcessDescriptor, n)
	for i := range out {
		out[i] = ProcessDescriptor{
			PID:      1000 + i,
			Arrival:  int64(i%4) * 35,
			Priority: i % 5,
			Bursts:   []int64{40 + int64(i*17%90), 25 + int64(i*11%40), 30 + int64(i*13%70)},
		}
	}
	return out
}

func TestSimulator_AllAlgorithms_MultiCore_TerminateAndConserve(t *testing.T) {
	for _, alg := range []Algorithm{FCFS, SJF, PP, RR} {
		t.Run(string(alg), func(t *testing.T) {
			// GIVEN 12 processes on 3 cores with context switches
			cfg := Config{
				Algorithm:     alg,
				Cores:         3,
				ContextSwitch: 5,
				TimeSlice:     25,
				Tick:          5,
				Processes:     mixedWorkload(12),
			}

			// WHEN the simulation runs
			s, m := runSim(t, cfg, nil)

			// THEN every process terminates with conserved timing
			require.Equal(t, 12, m.CompletedProcesses)
			for i, p := range s.Processes() {
				d := cfg.Processes[i]
				assert.Equal(t, StateTerminated, p.State(), "pid %d", p.PID)
				assert.Equal(t, d.Bursts[0]+d.Bursts[2], p.CPUTime(), "pid %d cpu", p.PID)
				assert.Equal(t, p.TurnaroundTime(), p.WaitTime()+p.CPUTime(), "pid %d conservation", p.PID)
				assert.Equal(t, int64(0), p.RemainingTime(), "pid %d remaining", p.PID)
				assert.GreaterOrEqual(t, p.LaunchTime(), d.Arrival)
			}
			// AND every CPU burst completion was observed exactly once
			assert.Len(t, s.Trace.Completions, 24)
			assert.Equal(t, len(s.Trace.Dispatches), len(s.Trace.Preemptions)+24)
		})
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	// GIVEN the same multi-core configuration
	cfg := Config{
		Algorithm:     RR,
		Cores:         3,
		ContextSwitch: 5,
		TimeSlice:     20,
		Tick:          5,
		Processes:     mixedWorkload(10),
	}

	// WHEN run twice
	s1, m1 := runSim(t, cfg, nil)
	s2, m2 := runSim(t, cfg, nil)

	// THEN decisions and metrics are identical
	assert.Equal(t, s1.Trace.Dispatches, s2.Trace.Dispatches)
	assert.Equal(t, s1.Trace.Preemptions, s2.Trace.Preemptions)
	assert.Equal(t, m1, m2)
}

func TestSimulator_Reporter_SnapshotsPerTick(t *testing.T) {
	// GIVEN a reporter collecting every snapshot
	var frames [][]ProcessStatus
	var clocks []int64
	reporter := ReporterFunc(func(now int64, statuses []ProcessStatus) {
		clocks = append(clocks, now)
		frames = append(frames, statuses)
	})
	cfg := Config{
		Algorithm: RR,
		Cores:     2,
		TimeSlice: 20,
		Tick:      10,
		Processes: []ProcessDescriptor{
			{PID: 1, Bursts: []int64{30, 10, 30}},
			{PID: 2, Arrival: 50, Bursts: []int64{40}},
		},
	}

	runSim(t, cfg, reporter)

	// THEN one frame per tick, 10 ms apart
	require.NotEmpty(t, frames)
	for i := 1; i < len(clocks); i++ {
		assert.Equal(t, clocks[i-1]+10, clocks[i])
	}
	// AND processes appear only after launch
	require.Len(t, frames[0], 1)
	assert.Equal(t, 1, frames[0][0].PID)
	assert.Equal(t, StateRunning, frames[0][0].State)
	core, err := frames[0][0].Core.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, core)

	// AND remaining time never increases
	last := map[int]int64{}
	for _, frame := range frames {
		for _, st := range frame {
			if prev, ok := last[st.PID]; ok {
				assert.LessOrEqual(t, st.Remaining, prev, "pid %d", st.PID)
			}
			assert.GreaterOrEqual(t, st.Remaining, int64(0))
			assert.Equal(t, st.State == StateRunning, st.Core.Present())
			last[st.PID] = st.Remaining
		}
	}

	// AND the final frame shows every process terminated
	final := frames[len(frames)-1]
	require.Len(t, final, 2)
	for _, st := range final {
		assert.Equal(t, StateTerminated, st.State, fmt.Sprintf("pid %d", st.PID))
	}
}

func TestNewSimulator_InvalidConfig_ReturnsError(t *testing.T) {
	_, err := NewSimulator(Config{Algorithm: FCFS, Cores: 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewSimulator_RRSliceOffDefaultTick_Rejected(t *testing.T) {
	// GIVEN the 100/30 round robin workload on the default 50 ms tick
	cfg := Config{
		Algorithm: RR,
		Cores:     1,
		TimeSlice: 30,
		Processes: []ProcessDescriptor{{PID: 1, Bursts: []int64{100}}},
	}

	// WHEN the simulator is built
	_, err := NewSimulator(cfg, nil)

	// THEN it refuses to stretch the slice to 50 ms
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time_slice must be a multiple of tick (50 ms)")

	// AND a tick that divides the slice yields exactly three 30 ms preemptions
	cfg.Tick = 30
	s, _ := runSim(t, cfg, nil)
	p := procByPID(t, s, 1)
	assert.Equal(t, 3, p.Preemptions())
	for _, r := range s.Trace.Preemptions {
		assert.Equal(t, int64(30), r.Consumed)
	}
	assert.Equal(t, int64(100), p.CPUTime())
}

func TestSimulator_RunTwice_Panics(t *testing.T) {
	s, err := NewSimulator(Config{
		Algorithm: FCFS,
		Cores:     1,
		Tick:      1,
		Processes: []ProcessDescriptor{{PID: 1, Bursts: []int64{1}}},
	}, nil)
	require.NoError(t, err)
	s.Run()
	assert.Panics(t, func() { s.Run() })
}
