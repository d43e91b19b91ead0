package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches    int
	TotalPreemptions   int
	TotalCompletions   int
	DispatchesByCore   map[int]int    // core id → number of dispatches
	PreemptionsByPID   map[int]int    // pid → number of preemptions
	PreemptionsReasons map[string]int // reason → count
	BusiestCore        int            // core with most dispatches, lowest id on ties; -1 if none
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DispatchesByCore:   make(map[int]int),
		PreemptionsByPID:   make(map[int]int),
		PreemptionsReasons: make(map[string]int),
		BusiestCore:        -1,
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.DispatchesByCore[d.Core]++
	}
	summary.TotalPreemptions = len(st.Preemptions)
	for _, p := range st.Preemptions {
		summary.PreemptionsByPID[p.PID]++
		summary.PreemptionsReasons[p.Reason]++
	}
	summary.TotalCompletions = len(st.Completions)

	best := 0
	for core, n := range summary.DispatchesByCore {
		if n > best || (n == best && core < summary.BusiestCore) {
			best = n
			summary.BusiestCore = core
		}
	}
	return summary
}
