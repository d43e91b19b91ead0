package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThroughput(t *testing.T) {
	tests := []struct {
		name                       string
		finishes                   []int64
		minSpan                    int64
		wantFirst, wantSecond, all float64
	}{
		{name: "empty", finishes: nil, minSpan: 1},
		{name: "two completions", finishes: []int64{10, 15}, minSpan: 1, wantFirst: 100, wantSecond: 200, all: 2 / 0.015},
		{name: "single completion", finishes: []int64{100}, minSpan: 1, wantFirst: 10, wantSecond: 0, all: 10},
		{name: "odd count puts middle in first half", finishes: []int64{1000, 2000, 4000}, minSpan: 1, wantFirst: 1, wantSecond: 0.5, all: 0.75},
		{name: "simultaneous completions widened to min span", finishes: []int64{50, 50}, minSpan: 50, wantFirst: 20, wantSecond: 20, all: 40},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			first, second, overall := Throughput(tc.finishes, tc.minSpan)
			assert.InDelta(t, tc.wantFirst, first, 1e-9)
			assert.InDelta(t, tc.wantSecond, second, 1e-9)
			assert.InDelta(t, tc.all, overall, 1e-9)
		})
	}
}

func TestMetrics_CompletionOrder(t *testing.T) {
	// GIVEN two processes where the second configured finishes first
	cfg := Config{
		Algorithm: SJF,
		Cores:     1,
		Tick:      1,
		Processes: []ProcessDescriptor{
			{PID: 1, Arrival: 1, Bursts: []int64{30}},
			{PID: 2, Arrival: 1, Bursts: []int64{10}},
		},
	}

	// WHEN run
	_, m := runSim(t, cfg, nil)

	// THEN per-process stats follow completion order
	assert.Equal(t, 2, m.CompletedProcesses)
	assert.Equal(t, SJF, m.Algorithm)
	assert.Equal(t, 1, m.Cores)
	if assert.Len(t, m.Processes, 2) {
		assert.Equal(t, 2, m.Processes[0].PID)
		assert.Equal(t, 1, m.Processes[1].PID)
		assert.Equal(t, int64(11), m.Processes[0].FinishTime)
		assert.Equal(t, int64(41), m.Processes[1].FinishTime)
		assert.Equal(t, int64(10), m.Processes[1].Wait)
	}
	assert.Equal(t, int64(41), m.SimEndedTime)
}
