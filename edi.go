package edi

import (
	"fmt"
	"io"
	"log/slog"
)

// Result is the record produced by one Process call. All fields are value
// copies with no aliasing back into the detector.
type Result struct {
	Salience     SalienceVector `json:"salience"`
	Coherence    float64        `json:"coherence"`
	Features     FeatureBundle  `json:"features"`
	Knobs        KnobState      `json:"knobs"`
	Risk         RiskAssessment `json:"risk"`
	Health       HealthStatus   `json:"health"`
	Bias         GovernanceBias `json:"bias"`
	ChannelNames []string       `json:"channel_names"`
}

// GovernanceBias projects internal detector state into the parameters the
// external governance layer consumes. This projection is the sole surface
// that layer may depend on.
type GovernanceBias struct {
	// RiskMultiplier scales external risk handling inversely with health
	// coherence: 1.0 at full coherence, up to 3.0 at zero.
	RiskMultiplier    float64   `json:"risk_multiplier"`
	AttentionFocus    float64   `json:"attention_focus"`
	DecisionCoupling  float64   `json:"decision_coupling"`
	NoiseTolerance    float64   `json:"noise_tolerance"`
	ExplorationFactor float64   `json:"exploration_factor"`
	CoherenceWeight   float64   `json:"coherence_weight"`
	SalienceWeights   []float64 `json:"salience_weights"`
}

// DetectorStats holds cumulative detector counters.
type DetectorStats struct {
	// Steps is the number of completed Process calls.
	Steps int64 `json:"steps"`

	// SkippedPairs counts channel pairs dropped across all extractions
	// because an index was out of range. A nonzero value usually means the
	// pair list does not match the channel count.
	SkippedPairs int64 `json:"skipped_pairs"`

	LastCoherence float64 `json:"last_coherence"`
	HistoryLen    int     `json:"history_len"`
}

// Detector is the EDI core facade. It wires feature extraction, salience/
// coherence aggregation, bounded history tracking, and the adaptive knob
// controller into one synchronous pipeline driven by Process.
//
// A Detector exclusively owns its history and knob state and performs no
// internal locking: callers with multiple producers must serialize access.
type Detector struct {
	cfg        Config
	extractor  *FeatureExtractor
	history    *HistoryTracker
	controller *KnobController
	logger     *slog.Logger

	steps        int64
	skippedPairs int64
}

// NewDetector creates a detector from the given configuration. Zero-valued
// tuning fields take their defaults; the configuration must otherwise pass
// Validate.
func NewDetector(cfg Config) (*Detector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Detector{
		cfg:        cfg,
		extractor:  NewFeatureExtractor(cfg),
		history:    NewHistoryTracker(cfg.HistoryCapacity, cfg.TrendWindow),
		controller: NewKnobController(cfg),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	d.logger.Info("edi detector initialized",
		"sample_rate", cfg.SampleRate,
		"window_seconds", cfg.WindowSeconds,
		"channels", len(cfg.ChannelNames))
	return d, nil
}

// SetLogger directs detector logging to the given logger. Passing nil
// restores the default discard logger.
func (d *Detector) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d.logger = logger
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Process runs one detection step: extract features, aggregate salience and
// coherence, record history, update knobs, and compose the output record.
//
// The only error condition is a shape precondition violation: sensor and
// residual must be equal-shaped T×K matrices with K matching the configured
// channel count. Everything else degrades numerically, never fails.
func (d *Detector) Process(sensor, residual Window) (*Result, error) {
	if !sameShape(sensor, residual) {
		return nil, fmt.Errorf("%w: sensor %dx%d, residual %dx%d",
			ErrShapeMismatch, sensor.Rows(), sensor.Cols(), residual.Rows(), residual.Cols())
	}
	// sameShape matches rows pairwise, so sensor rectangularity covers the
	// residual as well.
	if !sensor.rectangular() {
		return nil, fmt.Errorf("%w: ragged window rows", ErrShapeMismatch)
	}
	if k := sensor.Cols(); k != len(d.cfg.ChannelNames) {
		return nil, fmt.Errorf("%w: got %d channels, configured %d",
			ErrShapeMismatch, k, len(d.cfg.ChannelNames))
	}

	phi := d.extractor.Extract(sensor, residual, d.cfg.ChannelPairs)
	salience, coherence := Aggregate(phi)
	d.history.Record(coherence, salience)
	knobs := d.controller.Step(salience, coherence)
	risk := d.controller.Risk(salience, coherence)
	health := d.history.Health()

	d.steps++
	if phi.SkippedPairs > 0 {
		d.skippedPairs += int64(phi.SkippedPairs)
		d.logger.Warn("skipped invalid channel pairs",
			"skipped", phi.SkippedPairs,
			"channels", sensor.Cols())
	}
	d.logger.Debug("edi step",
		"coherence", coherence,
		"risk", risk.Level,
		"health", health.Status)

	names := make([]string, len(d.cfg.ChannelNames))
	copy(names, d.cfg.ChannelNames)

	return &Result{
		Salience:     salience,
		Coherence:    coherence,
		Features:     phi,
		Knobs:        knobs,
		Risk:         risk,
		Health:       health,
		Bias:         d.GovernanceBias(),
		ChannelNames: names,
	}, nil
}

// GovernanceBias returns the current projection of detector state for the
// external governance layer. Before any history exists the salience weights
// default to a uniform 1/K split.
func (d *Detector) GovernanceBias() GovernanceBias {
	health := d.history.Health()
	knobs := d.controller.Knobs()

	weights := []float64(d.history.LastSalience())
	if weights == nil {
		k := len(d.cfg.ChannelNames)
		weights = make([]float64, k)
		for i := range weights {
			weights[i] = 1.0 / float64(k)
		}
	}

	return GovernanceBias{
		RiskMultiplier:    1.0 + 2.0*(1.0-health.Coherence),
		AttentionFocus:    knobs.Focus,
		DecisionCoupling:  knobs.Entanglement,
		NoiseTolerance:    knobs.Interference,
		ExplorationFactor: knobs.Exploration,
		CoherenceWeight:   health.Coherence,
		SalienceWeights:   weights,
	}
}

// Health reclassifies current health from the bounded history.
func (d *Detector) Health() HealthStatus { return d.history.Health() }

// CoherenceTrend exposes the history coherence trend over the given window.
func (d *Detector) CoherenceTrend(window int) float64 {
	return d.history.CoherenceTrend(window)
}

// SalienceTrends exposes the per-channel salience trend over the given
// window.
func (d *Detector) SalienceTrends(window int) []float64 {
	return d.history.SalienceTrends(window)
}

// Stats returns cumulative detector counters.
func (d *Detector) Stats() DetectorStats {
	var last float64
	if n := d.history.Len(); n > 0 {
		last = d.history.coherence[n-1]
	}
	return DetectorStats{
		Steps:         d.steps,
		SkippedPairs:  d.skippedPairs,
		LastCoherence: last,
		HistoryLen:    d.history.Len(),
	}
}
