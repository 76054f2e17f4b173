package edi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, ErrInvalidConfig},
		{"no channels", func(c *Config) { c.ChannelNames = nil }, ErrNoChannels},
		{"role out of range", func(c *Config) { c.Roles = map[string]int{RoleCouplingRisk: 4} }, ErrInvalidConfig},
		{"negative role", func(c *Config) { c.Roles = map[string]int{RoleNoiseRisk: -1} }, ErrInvalidConfig},
		{"knob outside unit interval", func(c *Config) {
			c.InitialKnobs = &KnobState{Focus: 1.5, Entanglement: 0.5, Interference: 0.5, Exploration: 0.5}
		}, ErrInvalidConfig},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestConfig_OutOfRangePairsAreLegal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChannelPairs = [][2]int{{0, 42}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("out-of-range pairs are skipped at runtime, not rejected: %v", err)
	}
}

func TestParseConfig_DefaultsFill(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
sample_rate: 100
channel_names: [pressure, flow]
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.FFTSize != 256 || cfg.MinWindow != 32 || cfg.HistoryCapacity != 1000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.LearningRate != 0.08 || cfg.RiskThreshold != 0.4 {
		t.Errorf("tuning defaults not applied: %+v", cfg)
	}
}

func TestParseConfig_Full(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
sample_rate: 200
window_seconds: 1.5
channel_names: [thermal, vibration, em, power]
channel_pairs:
  - [2, 3]
  - [0, 2]
roles:
  noise_risk: 2
  coupling_risk: 1
history_capacity: 500
initial_knobs:
  focus: 0.9
  entanglement: 0.4
  interference: 0.2
  exploration: 0.3
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if len(cfg.ChannelPairs) != 2 || cfg.ChannelPairs[0] != [2]int{2, 3} {
		t.Errorf("pairs = %v", cfg.ChannelPairs)
	}
	if cfg.Roles[RoleNoiseRisk] != 2 {
		t.Errorf("roles = %v", cfg.Roles)
	}
	if cfg.InitialKnobs == nil || cfg.InitialKnobs.Focus != 0.9 {
		t.Errorf("initial knobs = %+v", cfg.InitialKnobs)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	if _, err := ParseConfig([]byte("sample_rate: [nope")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("malformed yaml should wrap ErrInvalidConfig, got %v", err)
	}
	if _, err := ParseConfig([]byte("sample_rate: 100")); !errors.Is(err, ErrNoChannels) {
		t.Errorf("missing channels should fail validation, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edi.yaml")
	doc := []byte("sample_rate: 50\nchannel_names: [a, b]\n")
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SampleRate != 50 || len(cfg.ChannelNames) != 2 {
		t.Errorf("loaded config = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
