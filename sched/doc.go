// Package sched provides the concurrent CPU scheduling engine for os-sched.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - process.go: Process lifecycle (not started → ready → running → i/o → terminated)
//     and the timestamp-derived timing model
//   - policy.go: the four ready-queue policies (FCFS, SJF, PP, RR) and their
//     preemption rules
//   - simulator.go: shared scheduler state and the dispatcher loop
//   - core.go: the per-core execution loop
//
// # Concurrency
//
// One dispatcher goroutine and one goroutine per simulated core share a single
// mutex and condition variable. Simulated time is a logical clock advanced only
// by the dispatcher; each tick is handed to the cores in core-id order so that a
// run is reproducible for a fixed configuration. The dispatcher never moves a
// running process off its core. It sets the process's interrupt flag and the
// owning core honors it on its next turn.
//
// Within a tick the goroutines execute serially: the dispatcher finishes its
// pass before handing the tick over, and only the core holding the turn acts.
// Concurrency is in the hand-offs between goroutines, not in parallel execution.
// Tick is therefore the time resolution: context switches and RR time slices
// must be multiples of it, which Config.Validate enforces.
//
// # Time
//
// All durations are simulated milliseconds (int64). Reporting layers convert to
// seconds for display.
//
// # Sub-packages
//   - sched/trace: dispatch and preemption decision records
//   - sched/report: console table rendering of status snapshots and final metrics
package sched
