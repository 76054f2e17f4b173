package edi

import "gonum.org/v1/gonum/floats"

// SalienceVector holds one anomaly score per channel, each in [0,1].
// Higher means more anomalous.
type SalienceVector []float64

// Aggregate folds a feature bundle into the per-channel salience vector and
// the scalar coherence score. Pure and deterministic: identical bundles
// yield identical outputs.
//
// Salience weights direct per-channel evidence: 0.55×entropy plus
// 0.45×residual surprise normalized by the window's maximum surprise across
// channels, so one extreme channel cannot saturate the others.
//
// Coherence inverts a weighted blend favoring per-channel evidence over
// cross-channel effects: 0.35 entropy, 0.35 normalized residual, 0.20 phase
// drift, 0.10 correlation peak.
func Aggregate(phi FeatureBundle) (SalienceVector, float64) {
	ent := phi.ChannelEntropies
	res := phi.ChannelResiduals

	var maxRes float64
	if len(res) > 0 {
		maxRes = floats.Max(res)
	}

	s := make(SalienceVector, len(ent))
	for k := range s {
		norm := clamp01(res[k] / (maxRes + epsilon))
		s[k] = clamp01(0.55*ent[k] + 0.45*norm)
	}

	resMean := clamp01(meanOrZero(res) / (maxRes + epsilon))
	c := 1.0 - clamp01(
		0.35*meanOrZero(ent)+
			0.35*resMean+
			0.20*meanOrZero(phi.PhaseDriftPairs)+
			0.10*meanOrZero(phi.XCorrPairs))

	return s, clamp01(c)
}
