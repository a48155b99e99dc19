// Package config holds the tunable parameters of the mesh and their
// production-safe defaults. Configuration can be supplied programmatically or
// loaded from a YAML file; every knob is optional and zero values fall back
// to defaults during validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryConfig tunes the outbound collaborator call policy. Retries use a
// fixed delay and apply only to transient failures; permanent failures
// surface immediately.
type RetryConfig struct {
	// Attempts is the total number of tries for a retryable failure.
	Attempts int `yaml:"attempts"`

	// Delay is the fixed pause between attempts.
	Delay time.Duration `yaml:"delay"`

	// Timeout bounds every individual collaborator call.
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML accepts Go duration strings ("500ms", "2s") for the delay and
// timeout knobs. Absent fields keep the values already present, so decoding
// over Default() merges rather than resets.
func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Attempts int    `yaml:"attempts"`
		Delay    string `yaml:"delay"`
		Timeout  string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Attempts != 0 {
		r.Attempts = raw.Attempts
	}
	if raw.Delay != "" {
		d, err := time.ParseDuration(raw.Delay)
		if err != nil {
			return fmt.Errorf("retry.delay: %w", err)
		}
		r.Delay = d
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("retry.timeout: %w", err)
		}
		r.Timeout = d
	}
	return nil
}

// EmergencyConfig tunes the emergency decision scoring and gating.
type EmergencyConfig struct {
	// OrchestrationGate is the minimum confidence score for the binary
	// orchestration decision. The advisory APPROVED classification shares
	// this bound.
	OrchestrationGate float64 `yaml:"orchestration_gate"`

	// PendingFloor is the minimum score classified PENDING; scores below it
	// are DENIED.
	PendingFloor float64 `yaml:"pending_floor"`
}

// MonitoringConfig holds the remediation thresholds evaluated against live
// metrics samples. A sample breaching any threshold triggers remediation.
type MonitoringConfig struct {
	MaxLatencyMs     float64 `yaml:"max_latency_ms"`
	MaxJitterMs      float64 `yaml:"max_jitter_ms"`
	MaxPacketLossPct float64 `yaml:"max_packet_loss_pct"`
}

// Config aggregates all mesh tuning parameters.
type Config struct {
	// DecisionThreshold is the confidence bound a rule group must reach
	// before it proposes action.
	DecisionThreshold float64 `yaml:"decision_threshold"`

	// MaxAgentsPerBatch caps how many eligible agents run in one dispatch.
	MaxAgentsPerBatch int `yaml:"max_agents_per_batch"`

	// MaxConcurrentSubjects bounds parallelism across subject batches.
	MaxConcurrentSubjects int `yaml:"max_concurrent_subjects"`

	Retry      RetryConfig      `yaml:"retry"`
	Emergency  EmergencyConfig  `yaml:"emergency"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// Default returns the production-safe baseline configuration.
func Default() Config {
	return Config{
		DecisionThreshold:     0.7,
		MaxAgentsPerBatch:     10,
		MaxConcurrentSubjects: 8,
		Retry: RetryConfig{
			Attempts: 3,
			Delay:    2 * time.Second,
			Timeout:  30 * time.Second,
		},
		Emergency: EmergencyConfig{
			OrchestrationGate: 0.95,
			PendingFloor:      0.8,
		},
		Monitoring: MonitoringConfig{
			MaxLatencyMs:     100,
			MaxJitterMs:      20,
			MaxPacketLossPct: 5,
		},
	}
}

// Load reads a YAML file and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate normalizes zero values back to defaults and rejects out-of-range
// settings.
func (c *Config) Validate() error {
	def := Default()
	if c.DecisionThreshold == 0 {
		c.DecisionThreshold = def.DecisionThreshold
	}
	if c.DecisionThreshold < 0 || c.DecisionThreshold > 1 {
		return fmt.Errorf("decision_threshold %v out of [0,1]", c.DecisionThreshold)
	}
	if c.MaxAgentsPerBatch <= 0 {
		c.MaxAgentsPerBatch = def.MaxAgentsPerBatch
	}
	if c.MaxConcurrentSubjects <= 0 {
		c.MaxConcurrentSubjects = def.MaxConcurrentSubjects
	}
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = def.Retry.Attempts
	}
	if c.Retry.Delay <= 0 {
		c.Retry.Delay = def.Retry.Delay
	}
	if c.Retry.Timeout <= 0 {
		c.Retry.Timeout = def.Retry.Timeout
	}
	if c.Emergency.OrchestrationGate == 0 {
		c.Emergency.OrchestrationGate = def.Emergency.OrchestrationGate
	}
	if c.Emergency.OrchestrationGate < 0 || c.Emergency.OrchestrationGate > 1 {
		return fmt.Errorf("emergency.orchestration_gate %v out of [0,1]", c.Emergency.OrchestrationGate)
	}
	if c.Emergency.PendingFloor == 0 {
		c.Emergency.PendingFloor = def.Emergency.PendingFloor
	}
	if c.Emergency.PendingFloor > c.Emergency.OrchestrationGate {
		return fmt.Errorf("emergency.pending_floor %v above orchestration_gate %v", c.Emergency.PendingFloor, c.Emergency.OrchestrationGate)
	}
	if c.Monitoring.MaxLatencyMs <= 0 {
		c.Monitoring.MaxLatencyMs = def.Monitoring.MaxLatencyMs
	}
	if c.Monitoring.MaxJitterMs <= 0 {
		c.Monitoring.MaxJitterMs = def.Monitoring.MaxJitterMs
	}
	if c.Monitoring.MaxPacketLossPct <= 0 {
		c.Monitoring.MaxPacketLossPct = def.Monitoring.MaxPacketLossPct
	}
	return nil
}
