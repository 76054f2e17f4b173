package edi

import (
	"math"
	"testing"
)

func TestSimulateScenario_Shape(t *testing.T) {
	cfg := SimulationConfig{SampleRate: 100, Duration: 3, Scenario: ScenarioBaseline, Seed: 1}
	sensor, residual := SimulateScenario(cfg)

	if sensor.Rows() != 300 || sensor.Cols() != 4 {
		t.Errorf("sensor shape = %dx%d, want 300x4", sensor.Rows(), sensor.Cols())
	}
	if !sameShape(sensor, residual) {
		t.Error("sensor and residual must be equal-shaped")
	}
}

func TestSimulateScenario_Deterministic(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Scenario = ScenarioSolarStorm

	s1, r1 := SimulateScenario(cfg)
	s2, r2 := SimulateScenario(cfg)
	for i := range s1 {
		if !equalFloats(s1[i], s2[i]) || !equalFloats(r1[i], r2[i]) {
			t.Fatalf("row %d differs between runs with the same seed", i)
		}
	}

	cfg.Seed = 8
	s3, _ := SimulateScenario(cfg)
	if equalFloats(s1[0], s3[0]) && equalFloats(s1[1], s3[1]) {
		t.Error("different seeds should produce different noise")
	}
}

func TestSimulateScenario_SolarStormRaisesEMActivity(t *testing.T) {
	cfg := DefaultSimulationConfig()
	base, _ := SimulateScenario(cfg)
	cfg.Scenario = ScenarioSolarStorm
	storm, _ := SimulateScenario(cfg)

	// Compare EM channel variance over the storm interval (40%-75% of the
	// run) against the same interval of the baseline.
	lo, hi := int(0.45*float64(base.Rows())), int(0.70*float64(base.Rows()))
	if v1, v2 := colVariance(base[lo:hi], 2), colVariance(storm[lo:hi], 2); v2 < 2*v1 {
		t.Errorf("storm EM variance %f should well exceed baseline %f", v2, v1)
	}
}

func TestSimulateScenario_MicrometeoroidImpulseLocation(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Scenario = ScenarioMicrometeoroid
	sensor, residual := SimulateScenario(cfg)

	// The vibration impulse peaks near 55% of the run.
	peakIdx, peakVal := 0, 0.0
	for i := range sensor {
		if v := math.Abs(sensor[i][1]); v > peakVal {
			peakIdx, peakVal = i, v
		}
	}
	center := int(0.55 * float64(sensor.Rows()))
	if d := peakIdx - center; d < -sensor.Rows()/10 || d > sensor.Rows()/10 {
		t.Errorf("vibration peak at %d, expected near %d", peakIdx, center)
	}
	if residual[center][1] < 0.1 {
		t.Errorf("residual spike missing at impulse center: %f", residual[center][1])
	}
}

func TestSimulateScenario_SpoofCorrelatesEMAndPower(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Scenario = ScenarioSensorSpoof
	sensor, _ := SimulateScenario(cfg)

	// Inside the spoof interval the injected tone dominates both channels.
	lo, hi := int(0.40*float64(sensor.Rows())), int(0.60*float64(sensor.Rows()))
	em := Window(sensor[lo:hi]).Column(2)
	power := Window(sensor[lo:hi]).Column(3)
	if peak := xcorrPeak(em, power, 40); peak < 0.5 {
		t.Errorf("spoofed channels should correlate strongly, got %f", peak)
	}
}

func colVariance(w Window, k int) float64 {
	col := w.Column(k)
	mean := meanOrZero(col)
	var ss float64
	for _, v := range col {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(col))
}
