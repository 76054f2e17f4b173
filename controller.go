package edi

// KnobState holds the four bounded control knobs consumed by an external
// decision layer. Every field stays in [0,1] under any input sequence; each
// update is proportional to measured coherence pressure and clamped.
type KnobState struct {
	// Focus is attention stability.
	Focus float64 `json:"focus" yaml:"focus"`

	// Entanglement is coupling between decisions.
	Entanglement float64 `json:"entanglement" yaml:"entanglement"`

	// Interference is noise/risk tolerance.
	Interference float64 `json:"interference" yaml:"interference"`

	// Exploration is novelty seeking.
	Exploration float64 `json:"exploration" yaml:"exploration"`
}

// DefaultKnobState returns the standard knob starting point.
func DefaultKnobState() KnobState {
	return KnobState{
		Focus:        0.8,
		Entanglement: 0.5,
		Interference: 0.3,
		Exploration:  0.4,
	}
}

// RiskLevel classifies the current risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskAssessment carries the banded risk level, its numeric score, and the
// recommended actions for that band.
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   float64   `json:"score"`
	Actions []string  `json:"actions"`
}

// KnobController adapts the knob state from each (salience, coherence)
// observation. Role-conditioned rules are resolved from configuration at
// construction; the controller never assumes a channel ordering. Not safe
// for concurrent use.
type KnobController struct {
	knobs         KnobState
	learningRate  float64
	riskThreshold float64

	// Role channel indices, -1 when the role is not configured.
	noiseIdx    int
	couplingIdx int
}

// NewKnobController creates a controller from detector configuration.
func NewKnobController(cfg Config) *KnobController {
	cfg = cfg.withDefaults()
	knobs := DefaultKnobState()
	if cfg.InitialKnobs != nil {
		knobs = *cfg.InitialKnobs
	}
	c := &KnobController{
		knobs:         knobs,
		learningRate:  cfg.LearningRate,
		riskThreshold: cfg.RiskThreshold,
		noiseIdx:      -1,
		couplingIdx:   -1,
	}
	if idx, ok := cfg.Roles[RoleNoiseRisk]; ok {
		c.noiseIdx = idx
	}
	if idx, ok := cfg.Roles[RoleCouplingRisk]; ok {
		c.couplingIdx = idx
	}
	return c
}

// Knobs returns the current knob state.
func (c *KnobController) Knobs() KnobState { return c.knobs }

// Step updates the knobs from one observation and returns the new state.
//
// Coherence pressure (1−C) multiplicatively decays entanglement and
// interference, and pulls focus toward stability. Exploration shrinks below
// the risk threshold and grows slowly in high coherence. Salient role
// channels tighten their associated knob further. Every assignment is
// clamped to [0,1], so the state cannot diverge.
func (c *KnobController) Step(s SalienceVector, coherence float64) KnobState {
	pressure := 1.0 - coherence

	c.knobs.Entanglement = clamp01(c.knobs.Entanglement * (1.0 - 0.6*pressure))
	c.knobs.Interference = clamp01(c.knobs.Interference * (1.0 - 0.8*pressure))
	c.knobs.Focus = clamp01(c.knobs.Focus + c.learningRate*(0.15*coherence-0.10*pressure))

	if coherence < c.riskThreshold {
		c.knobs.Exploration = clamp01(c.knobs.Exploration * (1.0 - 0.5*pressure))
	} else if coherence > 0.7 {
		c.knobs.Exploration = clamp01(c.knobs.Exploration + c.learningRate*0.1*(coherence-0.7))
	}

	if v, ok := roleSalience(s, c.noiseIdx); ok && v > 0.7 {
		c.knobs.Interference = clamp01(c.knobs.Interference * (1.0 - 0.25*v))
	}
	if v, ok := roleSalience(s, c.couplingIdx); ok && v > 0.7 {
		c.knobs.Entanglement = clamp01(c.knobs.Entanglement * (1.0 - 0.25*v))
	}

	return c.knobs
}

// Risk scores the current observation as 0.6×(1−C) + 0.4×mean(S) and bands
// it with a recommended-action tag per band.
func (c *KnobController) Risk(s SalienceVector, coherence float64) RiskAssessment {
	score := 0.6*(1.0-coherence) + 0.4*meanOrZero(s)
	switch {
	case score < 0.3:
		return RiskAssessment{Level: RiskLow, Score: score, Actions: []string{"normal_operations"}}
	case score < 0.6:
		return RiskAssessment{Level: RiskModerate, Score: score, Actions: []string{"increased_monitoring"}}
	case score < 0.8:
		return RiskAssessment{Level: RiskHigh, Score: score, Actions: []string{"risk_mitigation"}}
	default:
		return RiskAssessment{Level: RiskCritical, Score: score, Actions: []string{"emergency_protocols"}}
	}
}

func roleSalience(s SalienceVector, idx int) (float64, bool) {
	if idx < 0 || idx >= len(s) {
		return 0, false
	}
	return s[idx], true
}
