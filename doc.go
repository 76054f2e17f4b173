// Package edi implements the Extended Detection & Integration core: a
// deterministic, in-memory pipeline that turns streaming multi-channel
// telemetry into per-channel salience scores, a scalar coherence score, and
// four bounded decision-biasing control knobs for an external governance
// layer.
//
// Each Process call runs windowed spectral and statistical feature
// extraction (spectral entropy, residual surprise, cross-spectrum phase
// drift, lagged correlation peaks), aggregates the features into salience
// and coherence, records them in bounded history, and advances the adaptive
// knob controller. All normalized outputs stay in [0,1] and the knob state
// is provably bounded under any input sequence.
//
// # Basic Usage
//
// Create a detector with default configuration:
//
//	det, err := edi.NewDetector(edi.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Feed it equal-shaped T×K sensor and residual windows once per telemetry
// batch:
//
//	result, err := det.Process(sensor, residual)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Coherence, result.Risk.Level, result.Health.Status)
//
// Project state for the governance layer:
//
//	bias := det.GovernanceBias()
//
// A Detector is synchronous and single-writer: it holds mutable history and
// knob state with no internal locking, so concurrent producers must
// serialize access externally. State never leaves memory unless the caller
// uses Snapshot/Restore.
package edi
