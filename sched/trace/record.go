package trace

// DispatchRecord captures a process being placed on a core (Ready → Running).
type DispatchRecord struct {
	PID   int
	Core  int
	Clock int64
}

// PreemptionRecord captures a running process handing its core back (Running → Ready).
type PreemptionRecord struct {
	PID      int
	Core     int
	Clock    int64
	Consumed int64  // CPU time used in the preempted episode
	Left     int64  // unconsumed part of the CPU burst, folded back into the burst
	Reason   string // "time-slice" or "priority"
}

// CompletionRecord captures the end of a CPU burst (Running → IO or Terminated).
type CompletionRecord struct {
	PID       int
	Core      int
	Clock     int64
	NextState string
}
