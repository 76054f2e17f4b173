package edi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Channel role names understood by the knob controller. Roles decouple the
// controller from channel ordering: a role maps to whichever channel index
// the deployment assigns it.
const (
	// RoleNoiseRisk marks the channel whose salience indicates noise risk.
	// High salience there tightens the interference knob.
	RoleNoiseRisk = "noise_risk"

	// RoleCouplingRisk marks the channel whose salience indicates coupling
	// risk. High salience there tightens the entanglement knob.
	RoleCouplingRisk = "coupling_risk"
)

// Config defines detector configuration.
type Config struct {
	// SampleRate is the telemetry sampling frequency in Hz. Required.
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate"`

	// WindowSeconds is the analysis window length in seconds.
	// Default: 2.0.
	WindowSeconds float64 `json:"window_seconds" yaml:"window_seconds"`

	// ChannelNames names each telemetry channel. The channel count K is
	// fixed by this list for the lifetime of the detector. Required.
	ChannelNames []string `json:"channel_names" yaml:"channel_names"`

	// ChannelPairs lists (i,j) channel index pairs tracked for phase drift
	// and cross-correlation. Out-of-range pairs are skipped at extraction
	// time and counted, never fatal.
	ChannelPairs [][2]int `json:"channel_pairs" yaml:"channel_pairs"`

	// Roles maps a role name (RoleNoiseRisk, RoleCouplingRisk) to a channel
	// index. Unknown role names are ignored; indices must be in range.
	Roles map[string]int `json:"roles,omitempty" yaml:"roles,omitempty"`

	// MinWindow is the minimum analysis window in samples. Shorter input is
	// zero-padded rather than rejected. Default: 32.
	MinWindow int `json:"min_window" yaml:"min_window"`

	// FFTSize is the number of samples per spectral estimate.
	// Default: 256.
	FFTSize int `json:"fft_size" yaml:"fft_size"`

	// HistoryCapacity bounds the coherence/salience history FIFOs.
	// Oldest entries are evicted once the capacity is reached.
	// Default: 1000.
	HistoryCapacity int `json:"history_capacity" yaml:"history_capacity"`

	// TrendWindow is the number of history entries per half of a trend
	// comparison. Default: 50.
	TrendWindow int `json:"trend_window" yaml:"trend_window"`

	// LearningRate scales additive knob updates. Default: 0.08.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// RiskThreshold is the coherence level below which exploration is
	// suppressed. Default: 0.4.
	RiskThreshold float64 `json:"risk_threshold" yaml:"risk_threshold"`

	// InitialKnobs overrides the default knob starting point.
	// If nil, DefaultKnobState() is used.
	InitialKnobs *KnobState `json:"initial_knobs,omitempty" yaml:"initial_knobs,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for a four-channel
// spacecraft-style telemetry feed sampled at 200 Hz.
func DefaultConfig() Config {
	return Config{
		SampleRate:      200,
		WindowSeconds:   2.0,
		ChannelNames:    []string{"thermal", "vibration", "em", "power"},
		ChannelPairs:    [][2]int{{2, 3}, {0, 2}},
		Roles:           map[string]int{RoleNoiseRisk: 2, RoleCouplingRisk: 1},
		MinWindow:       32,
		FFTSize:         256,
		HistoryCapacity: 1000,
		TrendWindow:     50,
		LearningRate:    0.08,
		RiskThreshold:   0.4,
	}
}

// withDefaults fills zero-valued fields with their defaults.
func (c Config) withDefaults() Config {
	if c.WindowSeconds <= 0 {
		c.WindowSeconds = 2.0
	}
	if c.MinWindow <= 0 {
		c.MinWindow = 32
	}
	if c.FFTSize <= 0 {
		c.FFTSize = 256
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = 1000
	}
	if c.TrendWindow <= 0 {
		c.TrendWindow = 50
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.08
	}
	if c.RiskThreshold <= 0 {
		c.RiskThreshold = 0.4
	}
	return c
}

// Validate checks the configuration for internal consistency.
// Out-of-range channel pairs are legal (they are skipped per extraction);
// out-of-range role indices are not, since a silently dropped role would
// disable a controller safety rule.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %v", ErrInvalidConfig, c.SampleRate)
	}
	if len(c.ChannelNames) == 0 {
		return fmt.Errorf("%w: channel_names is required", ErrNoChannels)
	}
	if c.WindowSeconds < 0 || c.LearningRate < 0 || c.RiskThreshold < 0 {
		return fmt.Errorf("%w: negative tuning parameter", ErrInvalidConfig)
	}
	for role, idx := range c.Roles {
		if idx < 0 || idx >= len(c.ChannelNames) {
			return fmt.Errorf("%w: role %q maps to channel %d, have %d channels",
				ErrInvalidConfig, role, idx, len(c.ChannelNames))
		}
	}
	if k := c.InitialKnobs; k != nil {
		for name, v := range map[string]float64{
			"focus":        k.Focus,
			"entanglement": k.Entanglement,
			"interference": k.Interference,
			"exploration":  k.Exploration,
		} {
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: initial knob %s=%v outside [0,1]", ErrInvalidConfig, name, v)
			}
		}
	}
	return nil
}

// ParseConfig decodes a YAML configuration document.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and decodes a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}
