package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	genSeed          int64
	genProcesses     int
	genMaxBursts     int
	genCores         int
	genAlgorithm     string
	genContextSwitch int64
	genTimeSlice     int64
	genOutput        string
)

// GenerateOptions bounds the random configuration produced by GenerateConfig.
type GenerateOptions struct {
	Processes     int
	MaxBursts     int // upper bound on bursts per process; rounded down to odd
	Cores         int
	Algorithm     string
	ContextSwitch int64
	TimeSlice     int64
}

// GenerateConfig builds a random configuration. The same rng state yields the
// same configuration. Roughly half the processes start at time 0, the rest
// arrive within the first 5 s.
func GenerateConfig(rng *rand.Rand, opts GenerateOptions) *FileConfig {
	maxBursts := max(opts.MaxBursts, 1)
	if maxBursts%2 == 0 {
		maxBursts--
	}
	fc := &FileConfig{
		Algorithm:     opts.Algorithm,
		Cores:         opts.Cores,
		ContextSwitch: opts.ContextSwitch,
		TimeSlice:     opts.TimeSlice,
		Processes:     make([]ProcessConfig, opts.Processes),
	}
	pid := 1024
	for i := range fc.Processes {
		pid += 1 + rng.Intn(8)
		n := 2*rng.Intn((maxBursts+1)/2) + 1
		bursts := make([]int64, n)
		for j := range bursts {
			if j%2 == 0 {
				bursts[j] = 100 + 50*int64(rng.Intn(39)) // CPU: 100-2000 ms
			} else {
				bursts[j] = 200 + 50*int64(rng.Intn(27)) // IO: 200-1500 ms
			}
		}
		var start int64
		if rng.Intn(2) == 1 {
			start = 50 * int64(rng.Intn(101))
		}
		fc.Processes[i] = ProcessConfig{
			PID:       pid,
			StartTime: start,
			Priority:  rng.Intn(5),
			Bursts:    bursts,
		}
	}
	return fc
}

// WriteConfig encodes fc as YAML.
func WriteConfig(w io.Writer, fc *FileConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// WriteConfigFile writes fc as YAML to path, creating or truncating it.
// A failed close is reported like a failed write.
func WriteConfigFile(path string, fc *FileConfig) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()
	return WriteConfig(f, fc)
}

// generateCmd writes a random configuration file
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random scheduler configuration",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if genProcesses <= 0 {
			logrus.Fatalf("--processes must be positive, got %d", genProcesses)
		}
		fc := GenerateConfig(rand.New(rand.NewSource(genSeed)), GenerateOptions{
			Processes:     genProcesses,
			MaxBursts:     genMaxBursts,
			Cores:         genCores,
			Algorithm:     genAlgorithm,
			ContextSwitch: genContextSwitch,
			TimeSlice:     genTimeSlice,
		})
		simCfg, err := fc.SimConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := simCfg.Validate(); err != nil {
			logrus.Fatalf("generated configuration is invalid: %v", err)
		}

		if genOutput == "" {
			err = WriteConfig(os.Stdout, fc)
		} else {
			err = WriteConfigFile(genOutput, fc)
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Generated %d processes (seed %d)", genProcesses, genSeed)
	},
}

func init() {
	generateCmd.Flags().Int64Var(&genSeed, "seed", 42, "Seed for random configuration generation")
	generateCmd.Flags().IntVar(&genProcesses, "processes", 8, "Number of processes")
	generateCmd.Flags().IntVar(&genMaxBursts, "max-bursts", 7, "Maximum bursts per process (odd; CPU first and last)")
	generateCmd.Flags().IntVar(&genCores, "cores", 2, "Number of CPU cores")
	generateCmd.Flags().StringVar(&genAlgorithm, "algorithm", "RR", "Scheduling algorithm (FCFS, SJF, PP, RR)")
	generateCmd.Flags().Int64Var(&genContextSwitch, "context-switch", 50, "Context switch time (ms)")
	generateCmd.Flags().Int64Var(&genTimeSlice, "time-slice", 200, "Round robin time slice (ms)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(generateCmd)
}
