package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/os-scheduling/os-sched/sched"
)

// ProcessConfig is one entry of the processes list in the configuration file.
type ProcessConfig struct {
	PID       int     `yaml:"pid"`
	StartTime int64   `yaml:"start_time"` // ms after simulation start
	Priority  int     `yaml:"priority"`   // lower = more urgent
	Bursts    []int64 `yaml:"bursts"`     // ms; CPU, IO, CPU, ..., CPU
}

// FileConfig represents the full scheduler configuration file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type FileConfig struct {
	Algorithm     string          `yaml:"algorithm"`
	Cores         int             `yaml:"cores"`
	ContextSwitch int64           `yaml:"context_switch"` // ms
	TimeSlice     int64           `yaml:"time_slice"`     // ms, RR only
	Processes     []ProcessConfig `yaml:"processes"`
}

// LoadConfig reads and parses a YAML scheduler configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SimConfig converts the file configuration into an engine configuration.
// Only the algorithm name is checked here; sched.Config.Validate covers the rest.
func (fc *FileConfig) SimConfig() (sched.Config, error) {
	alg, err := sched.ParseAlgorithm(fc.Algorithm)
	if err != nil {
		return sched.Config{}, err
	}
	cfg := sched.Config{
		Algorithm:     alg,
		Cores:         fc.Cores,
		ContextSwitch: fc.ContextSwitch,
		TimeSlice:     fc.TimeSlice,
		Processes:     make([]sched.ProcessDescriptor, len(fc.Processes)),
	}
	for i, p := range fc.Processes {
		cfg.Processes[i] = sched.ProcessDescriptor{
			PID:      p.PID,
			Arrival:  p.StartTime,
			Priority: p.Priority,
			Bursts:   append([]int64(nil), p.Bursts...),
		}
	}
	return cfg, nil
}
