package edi

import (
	"math"
	"math/rand"
)

// Scenario identifies a synthetic telemetry scenario.
type Scenario string

const (
	// ScenarioBaseline is nominal operation: low-frequency tones with mild
	// sensor noise and small residuals.
	ScenarioBaseline Scenario = "baseline"

	// ScenarioSolarStorm raises EM noise, disturbs power, and inflates the
	// EM/power residuals over the middle of the run.
	ScenarioSolarStorm Scenario = "solar_storm"

	// ScenarioMicrometeoroid injects a sharp vibration impulse with a
	// thermal bump and a short residual spike.
	ScenarioMicrometeoroid Scenario = "micrometeoroid"

	// ScenarioSensorSpoof injects correlated fake EM and power signals that
	// the residual model does not believe.
	ScenarioSensorSpoof Scenario = "sensor_spoof"
)

// SimulationConfig controls synthetic telemetry generation.
type SimulationConfig struct {
	// SampleRate in Hz. Default: 200.
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate"`

	// Duration in seconds. Default: 20.
	Duration float64 `json:"duration" yaml:"duration"`

	// Scenario to inject. Default: ScenarioBaseline.
	Scenario Scenario `json:"scenario" yaml:"scenario"`

	// Seed for the generator. The same seed always reproduces the same
	// windows.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultSimulationConfig returns a simulation matching DefaultConfig's
// channel layout.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		SampleRate: 200,
		Duration:   20,
		Scenario:   ScenarioBaseline,
		Seed:       7,
	}
}

// SimulateScenario generates a deterministic pair of T×4 sensor and
// residual windows with channels ordered thermal, vibration, em, power —
// the layout DefaultConfig declares. It exists for tests and examples; the
// detector never depends on it.
func SimulateScenario(cfg SimulationConfig) (sensor, residual Window) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 200
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 20
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	total := int(cfg.Duration * cfg.SampleRate)
	const k = 4
	sensor = NewWindow(total, k)
	residual = NewWindow(total, k)

	for i := 0; i < total; i++ {
		t := float64(i) / cfg.SampleRate

		sensor[i][0] = 0.20*math.Sin(2*math.Pi*0.08*t) + 0.05*rng.NormFloat64()
		sensor[i][1] = 0.15*math.Sin(2*math.Pi*0.60*t) + 0.07*rng.NormFloat64()
		sensor[i][2] = 0.10*math.Sin(2*math.Pi*0.15*t) + 0.05*rng.NormFloat64()
		sensor[i][3] = 0.05*math.Sin(2*math.Pi*0.03*t) + 0.03*rng.NormFloat64()

		for ch := 0; ch < k; ch++ {
			residual[i][ch] = 0.03 * rng.NormFloat64()
		}

		switch cfg.Scenario {
		case ScenarioSolarStorm:
			if t > 0.40*cfg.Duration && t < 0.75*cfg.Duration {
				sensor[i][2] += 0.25 * rng.NormFloat64()
				sensor[i][3] += 0.10 * math.Sin(2*math.Pi*0.2*t)
				residual[i][2] += 0.12 * rng.NormFloat64()
				residual[i][3] += 0.10 * rng.NormFloat64()
			}

		case ScenarioSensorSpoof:
			if t > 0.35*cfg.Duration && t < 0.65*cfg.Duration {
				fake := 0.35 * math.Sin(2*math.Pi*0.9*t)
				sensor[i][2] += fake
				sensor[i][3] += 0.8 * fake
				residual[i][2] += 0.20 * rng.NormFloat64()
				residual[i][3] += 0.20 * rng.NormFloat64()
			}
		}
	}

	if cfg.Scenario == ScenarioMicrometeoroid {
		hit := float64(int(0.55 * float64(total)))
		width := float64(int(0.05 * float64(total)))
		if width < 1 {
			width = 1
		}
		for i := 0; i < total; i++ {
			d := float64(i) - hit
			impulse := math.Exp(-(d * d) / (2 * width * width))
			sensor[i][1] += 0.90 * impulse
			sensor[i][0] += 0.35 * impulse
			residual[i][1] += 0.25 * impulse
			residual[i][0] += 0.18 * impulse
		}
	}

	return sensor, residual
}
