package edi

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

const (
	// epsilon guards denominators against zero-variance signals.
	epsilon = 1e-9

	// specEpsilon guards spectral probability normalization.
	specEpsilon = 1e-12

	// minOverlap is the fewest overlapping samples accepted for a lagged
	// correlation estimate.
	minOverlap = 10
)

// FeatureBundle is the anomaly phase signature Φ extracted from one pair of
// sensor/residual windows.
type FeatureBundle struct {
	// ChannelEntropies holds normalized spectral entropy per channel in
	// [0,1]. Higher means flatter/noisier; lower means tonal/structured.
	ChannelEntropies []float64 `json:"channel_entropies"`

	// ChannelResiduals holds residual surprise per channel: the mean
	// absolute standardized residual, a proxy for "the model did not
	// predict this".
	ChannelResiduals []float64 `json:"channel_residuals"`

	// PhaseDriftPairs holds, for each valid configured pair, the cross-
	// spectrum phase at the dominant frequency of the first channel,
	// normalized to [0,1]. 0 means in phase, 1 means fully opposed.
	PhaseDriftPairs []float64 `json:"phase_drift_pairs"`

	// XCorrPairs holds the peak absolute cross-correlation per valid pair
	// over the lag sweep, in [0,1].
	XCorrPairs []float64 `json:"xcorr_pairs"`

	EntropyMean    float64 `json:"entropy_mean"`
	ResidualMean   float64 `json:"residual_mean"`
	PhaseDriftMean float64 `json:"phase_drift_mean"`
	XCorrPeakMean  float64 `json:"xcorr_peak_mean"`

	// SkippedPairs counts configured channel pairs dropped in this
	// extraction because an index was out of range.
	SkippedPairs int `json:"skipped_pairs,omitempty"`

	// Timestamp is the capture time in Unix nanoseconds.
	Timestamp int64 `json:"timestamp"`
}

// FeatureExtractor computes FeatureBundles from sliding telemetry windows.
// It holds only immutable configuration and an FFT plan; Extract is
// deterministic and never errors — short or degenerate input degrades via
// zero-padding and epsilon guards.
type FeatureExtractor struct {
	sampleRate    float64
	windowSamples int
	fftSize       int
	maxLag        int
	fft           *fourier.FFT
}

// NewFeatureExtractor creates an extractor from detector configuration.
func NewFeatureExtractor(cfg Config) *FeatureExtractor {
	cfg = cfg.withDefaults()
	ws := int(cfg.WindowSeconds * cfg.SampleRate)
	if ws < cfg.MinWindow {
		ws = cfg.MinWindow
	}
	maxLag := int(0.2 * cfg.SampleRate)
	if maxLag < 1 {
		maxLag = 1
	}
	return &FeatureExtractor{
		sampleRate:    cfg.SampleRate,
		windowSamples: ws,
		fftSize:       cfg.FFTSize,
		maxLag:        maxLag,
		fft:           fourier.NewFFT(cfg.FFTSize),
	}
}

// WindowSamples returns the effective analysis window length in samples
// before truncation to the available data.
func (e *FeatureExtractor) WindowSamples() int { return e.windowSamples }

// Extract computes the feature bundle over the trailing analysis window of
// sensor and residual. pairs lists (i,j) channel indices for the pairwise
// phase/correlation features; out-of-range pairs are skipped and counted.
func (e *FeatureExtractor) Extract(sensor, residual Window, pairs [][2]int) FeatureBundle {
	w := e.windowSamples
	if t := sensor.Rows(); t < w {
		w = t
	}
	xw := sensor.Tail(w)
	rw := residual.Tail(w)
	k := sensor.Cols()

	ent := make([]float64, k)
	res := make([]float64, k)
	for ch := 0; ch < k; ch++ {
		ent[ch] = e.spectralEntropy(xw.Column(ch))
		res[ch] = residualSurprise(rw.Column(ch))
	}

	var (
		phases  []float64
		corrs   []float64
		skipped int
	)
	for _, p := range pairs {
		i, j := p[0], p[1]
		if i < 0 || j < 0 || i >= k || j >= k {
			skipped++
			continue
		}
		xi := xw.Column(i)
		xj := xw.Column(j)
		phases = append(phases, e.phaseDrift(xi, xj))
		corrs = append(corrs, xcorrPeak(xi, xj, e.maxLag))
	}

	return FeatureBundle{
		ChannelEntropies: ent,
		ChannelResiduals: res,
		PhaseDriftPairs:  phases,
		XCorrPairs:       corrs,
		EntropyMean:      meanOrZero(ent),
		ResidualMean:     meanOrZero(res),
		PhaseDriftMean:   meanOrZero(phases),
		XCorrPeakMean:    meanOrZero(corrs),
		SkippedPairs:     skipped,
		Timestamp:        time.Now().UnixNano(),
	}
}

// spectrum returns the Hann-tapered real FFT coefficients of x, zero-padded
// or truncated to the configured FFT size.
func (e *FeatureExtractor) spectrum(x []float64) []complex128 {
	buf := make([]float64, e.fftSize)
	copy(buf, x)
	window.Hann(buf)
	return e.fft.Coefficients(nil, buf)
}

// spectralEntropy computes the Shannon entropy of the normalized power
// spectrum, scaled by log(bin count) into [0,1].
func (e *FeatureExtractor) spectralEntropy(x []float64) float64 {
	coeffs := e.spectrum(x)
	power := make([]float64, len(coeffs))
	var total float64
	for i, c := range coeffs {
		p := real(c)*real(c) + imag(c)*imag(c)
		power[i] = p
		total += p
	}
	// Per-bin epsilon: a zero-power (silent) window normalizes to a flat
	// distribution and reports maximal entropy instead of collapsing to 0.
	n := float64(len(power))
	denom := total + n*specEpsilon
	var h float64
	for _, p := range power {
		q := (p + specEpsilon) / denom
		h -= q * math.Log(q)
	}
	return clamp01(h / math.Log(n))
}

// phaseDrift locates the dominant non-DC bin of x and returns the absolute
// cross-spectrum phase between x and y at that bin, normalized by π.
func (e *FeatureExtractor) phaseDrift(x, y []float64) float64 {
	cx := e.spectrum(x)
	cy := e.spectrum(y)
	if len(cx) < 2 || len(cy) < len(cx) {
		return 0
	}
	peak := 1
	peakPower := 0.0
	for i := 1; i < len(cx); i++ {
		c := cx[i]
		if p := real(c)*real(c) + imag(c)*imag(c); p > peakPower {
			peak, peakPower = i, p
		}
	}
	cross := cx[peak] * cmplx.Conj(cy[peak])
	return clamp01(math.Abs(cmplx.Phase(cross)) / math.Pi)
}

// residualSurprise is the mean absolute value of the standardized residual:
// mean(|x-μ|) / (σ+ε) with population standard deviation.
func residualSurprise(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var ss, absSum float64
	for _, v := range x {
		d := v - mean
		ss += d * d
		absSum += math.Abs(d)
	}
	std := math.Sqrt(ss / float64(len(x)))
	return absSum / (float64(len(x)) * (std + epsilon))
}

// xcorrPeak sweeps lags in [-maxLag, maxLag] and returns the maximum
// absolute Pearson correlation between the aligned segments, in [0,1].
// Lags leaving fewer than minOverlap samples are skipped; 0 is returned
// when no lag is valid.
func xcorrPeak(x, y []float64, maxLag int) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	x, y = x[:n], y[:n]

	var best float64
	for lag := -maxLag; lag <= maxLag; lag++ {
		if lag <= -n || lag >= n {
			continue
		}
		var a, b []float64
		switch {
		case lag < 0:
			a, b = x[:n+lag], y[-lag:]
		case lag > 0:
			a, b = x[lag:], y[:n-lag]
		default:
			a, b = x, y
		}
		if len(a) < minOverlap {
			continue
		}
		r := stat.Correlation(a, b, nil)
		if math.IsNaN(r) {
			// Zero-variance segment; correlation undefined.
			continue
		}
		if r = math.Abs(r); r > best {
			best = r
		}
	}
	return clamp01(best)
}

func meanOrZero(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
