// Package report renders scheduler status snapshots and final metrics as
// console tables.
package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/os-scheduling/os-sched/sched"
	"github.com/os-scheduling/os-sched/sched/trace"
)

var statusHeader = []string{"PID", "Priority", "State", "Core", "Turn Time", "Wait Time", "CPU Time", "Remain Time"}

// StatusTable is a sched.Reporter that redraws the process table in place
// each tick. The previous frame is erased with ANSI cursor-up/clear-line
// sequences, one per printed line.
type StatusTable struct {
	w     io.Writer
	lines int
}

// NewStatusTable creates a StatusTable writing to w.
func NewStatusTable(w io.Writer) *StatusTable {
	return &StatusTable{w: w}
}

// Report implements sched.Reporter.
func (st *StatusTable) Report(now int64, statuses []sched.ProcessStatus) {
	var buf bytes.Buffer
	for i := 0; i < st.lines; i++ {
		buf.WriteString("\033[A\033[2K")
	}
	var frame bytes.Buffer
	fmt.Fprintf(&frame, "Time: %s s\n", seconds(now))
	RenderStatus(&frame, statuses)
	st.lines = strings.Count(frame.String(), "\n")
	buf.Write(frame.Bytes())
	_, _ = st.w.Write(buf.Bytes())
}

// RenderStatus writes one status table for statuses.
func RenderStatus(w io.Writer, statuses []sched.ProcessStatus) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(statusHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(StatusRows(statuses))
	table.Render()
}

// StatusRows formats statuses as table rows; times are shown in seconds.
func StatusRows(statuses []sched.ProcessStatus) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		core := "--"
		if c, err := s.Core.Get(); err == nil {
			core = fmt.Sprint(c)
		}
		rows = append(rows, []string{
			fmt.Sprint(s.PID),
			fmt.Sprint(s.Priority),
			s.State.String(),
			core,
			seconds(s.Turnaround),
			seconds(s.Wait),
			seconds(s.CPU),
			seconds(s.Remaining),
		})
	}
	return rows
}

// PrintMetrics writes the final statistics block.
func PrintMetrics(w io.Writer, m *sched.Metrics) {
	_, _ = fmt.Fprintln(w, "=== Simulation Metrics ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{"Algorithm", string(m.Algorithm)},
		{"Cores", fmt.Sprint(m.Cores)},
		{"Completed processes", fmt.Sprint(m.CompletedProcesses)},
		{"CPU utilization", fmt.Sprintf("%.1f%%", m.CPUUtilization)},
		{"Throughput (first 50%)", fmt.Sprintf("%.3f processes/s", m.ThroughputFirstHalf)},
		{"Throughput (second 50%)", fmt.Sprintf("%.3f processes/s", m.ThroughputSecondHalf)},
		{"Throughput (overall)", fmt.Sprintf("%.3f processes/s", m.ThroughputOverall)},
		{"Average turnaround time", fmt.Sprintf("%.1f s", m.AvgTurnaround/1000)},
		{"Average waiting time", fmt.Sprintf("%.1f s", m.AvgWait/1000)},
	})
	table.Render()
}

// PrintProcessStats writes one row per process in completion order.
func PrintProcessStats(w io.Writer, m *sched.Metrics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "Priority", "Launch", "Finish", "Turn Time", "Wait Time", "CPU Time", "Dispatches", "Preemptions"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, p := range m.Processes {
		table.Append([]string{
			fmt.Sprint(p.PID),
			fmt.Sprint(p.Priority),
			seconds(p.LaunchTime),
			seconds(p.FinishTime),
			seconds(p.Turnaround),
			seconds(p.Wait),
			seconds(p.CPU),
			fmt.Sprint(p.Dispatches),
			fmt.Sprint(p.Preemptions),
		})
	}
	table.Render()
}

// PrintTraceSummary writes per-core dispatch counts and preemption totals.
func PrintTraceSummary(w io.Writer, s *trace.TraceSummary) {
	_, _ = fmt.Fprintln(w, "=== Decision Trace ===")
	_, _ = fmt.Fprintf(w, "Dispatches: %d  Preemptions: %d  Burst completions: %d\n",
		s.TotalDispatches, s.TotalPreemptions, s.TotalCompletions)

	cores := make([]int, 0, len(s.DispatchesByCore))
	for c := range s.DispatchesByCore {
		cores = append(cores, c)
	}
	sort.Ints(cores)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Core", "Dispatches"})
	table.SetAutoFormatHeaders(false)
	for _, c := range cores {
		table.Append([]string{fmt.Sprint(c), fmt.Sprint(s.DispatchesByCore[c])})
	}
	table.Render()

	reasons := make([]string, 0, len(s.PreemptionsReasons))
	for r := range s.PreemptionsReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		_, _ = fmt.Fprintf(w, "Preempted (%s): %d\n", r, s.PreemptionsReasons[r])
	}
}

func seconds(ms int64) string {
	return fmt.Sprintf("%.1f", float64(ms)/1000)
}
