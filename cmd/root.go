package cmd

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/os-scheduling/os-sched/sched"
	"github.com/os-scheduling/os-sched/sched/report"
	"github.com/os-scheduling/os-sched/sched/trace"
)

var (
	// CLI flags for the run command
	configPath    string        // Path to the YAML scheduler configuration
	algorithm     string        // Overrides the configured algorithm
	cores         int           // Overrides the configured core count
	contextSwitch int64         // Overrides the configured context switch time (ms)
	timeSlice     int64         // Overrides the configured RR time slice (ms)
	tick          int64         // Simulated ms advanced per dispatcher tick
	wallTick      time.Duration // Real time slept per tick
	quiet         bool          // Suppress the live status table
	traceLevel    string        // Decision trace level
	showProcesses bool          // Print per-process final statistics
	logLevel      string        // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "os-sched",
	Short: "Concurrent CPU scheduling simulator",
}

// runCmd executes the simulation using the configuration file and CLI overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		if configPath == "" {
			logrus.Fatalf("Configuration file not provided. Exiting simulation.")
		}
		fc, err := LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("unable to read scheduler config; %v", err)
		}
		cfg, err := fc.SimConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := applyOverrides(cmd, &cfg); err != nil {
			logrus.Fatalf("%v", err)
		}
		cfg.Tick = tick
		cfg.WallTick = wallTick
		cfg.Trace = trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}

		logrus.Infof("Starting simulation with %s on %d cores, context switch=%dms, time slice=%dms, %d processes",
			cfg.Algorithm, cfg.Cores, cfg.ContextSwitch, cfg.TimeSlice, len(cfg.Processes))

		if _, err := simulate(cfg, os.Stdout, !quiet); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// simulate runs cfg to completion and prints the final statistics to out.
// With live set, a status table is redrawn on out every tick.
func simulate(cfg sched.Config, out io.Writer, live bool) (*sched.Metrics, error) {
	var reporter sched.Reporter
	if live {
		reporter = report.NewStatusTable(out)
	}
	s, err := sched.NewSimulator(cfg, reporter)
	if err != nil {
		return nil, err
	}
	m := s.Run()

	report.PrintMetrics(out, m)
	if showProcesses {
		report.PrintProcessStats(out, m)
	}
	if s.Trace != nil {
		report.PrintTraceSummary(out, trace.Summarize(s.Trace))
	}
	return m, nil
}

// applyOverrides copies explicitly set CLI flags over the file configuration.
// Flags left at their defaults never overwrite configured values.
func applyOverrides(cmd *cobra.Command, cfg *sched.Config) error {
	flags := cmd.Flags()
	if flags.Changed("algorithm") {
		alg, err := sched.ParseAlgorithm(algorithm)
		if err != nil {
			return err
		}
		cfg.Algorithm = alg
	}
	if flags.Changed("cores") {
		cfg.Cores = cores
	}
	if flags.Changed("context-switch") {
		cfg.ContextSwitch = contextSwitch
	}
	if flags.Changed("time-slice") {
		cfg.TimeSlice = timeSlice
	}
	return nil
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML scheduler configuration")
	runCmd.Flags().StringVar(&algorithm, "algorithm", "", "Override scheduling algorithm (FCFS, SJF, PP, RR)")
	runCmd.Flags().IntVar(&cores, "cores", 0, "Override number of CPU cores")
	runCmd.Flags().Int64Var(&contextSwitch, "context-switch", 0, "Override context switch time (ms)")
	runCmd.Flags().Int64Var(&timeSlice, "time-slice", 0, "Override round robin time slice (ms)")
	runCmd.Flags().Int64Var(&tick, "tick", sched.DefaultTick, "Simulated ms advanced per dispatcher tick")
	runCmd.Flags().DurationVar(&wallTick, "wall-tick", 50*time.Millisecond, "Real time slept per tick (0 = as fast as possible)")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the live status table")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&showProcesses, "processes", false, "Print per-process statistics at the end")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
