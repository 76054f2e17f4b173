package edi

// HealthState classifies overall detector health.
type HealthState string

const (
	HealthInitializing HealthState = "initializing"
	HealthHealthy      HealthState = "healthy"
	HealthDegraded     HealthState = "degraded"
	HealthCritical     HealthState = "critical"
	HealthEmergency    HealthState = "emergency"
)

// HealthStatus is a point-in-time health classification recomputed from the
// bounded history on every call.
type HealthStatus struct {
	Status     HealthState `json:"status"`
	Coherence  float64     `json:"coherence"`
	Trend      float64     `json:"trend"`
	HistoryLen int         `json:"history_len"`
}

// HistoryTracker owns two parallel bounded FIFOs of coherence scalars and
// salience vectors. When the capacity is reached the oldest entry is
// evicted. Not safe for concurrent use; the owning detector serializes
// access by contract.
type HistoryTracker struct {
	capacity    int
	trendWindow int
	coherence   []float64
	salience    [][]float64
}

// NewHistoryTracker creates a tracker with the given capacity and trend
// comparison window. Non-positive values fall back to defaults.
func NewHistoryTracker(capacity, trendWindow int) *HistoryTracker {
	if capacity <= 0 {
		capacity = 1000
	}
	if trendWindow <= 0 {
		trendWindow = 50
	}
	return &HistoryTracker{
		capacity:    capacity,
		trendWindow: trendWindow,
		coherence:   make([]float64, 0, capacity),
		salience:    make([][]float64, 0, capacity),
	}
}

// Record appends one (coherence, salience) observation, evicting the oldest
// entry if the tracker is full. The salience vector is copied; the caller
// keeps ownership of its slice.
func (h *HistoryTracker) Record(coherence float64, salience SalienceVector) {
	s := make([]float64, len(salience))
	copy(s, salience)

	if len(h.coherence) == h.capacity {
		copy(h.coherence, h.coherence[1:])
		h.coherence = h.coherence[:h.capacity-1]
		copy(h.salience, h.salience[1:])
		h.salience = h.salience[:h.capacity-1]
	}
	h.coherence = append(h.coherence, coherence)
	h.salience = append(h.salience, s)
}

// Len returns the number of recorded entries.
func (h *HistoryTracker) Len() int { return len(h.coherence) }

// CoherenceTrend compares the mean of the most recent window entries with
// the mean of the window before it. With fewer than 2×window entries there
// is not enough data and 0 is returned.
func (h *HistoryTracker) CoherenceTrend(window int) float64 {
	if window <= 0 {
		window = h.trendWindow
	}
	n := len(h.coherence)
	if n < 2*window {
		return 0
	}
	recent := meanOrZero(h.coherence[n-window:])
	prior := meanOrZero(h.coherence[n-2*window : n-window])
	return recent - prior
}

// SalienceTrends returns the per-channel analogue of CoherenceTrend: the
// difference between recent and prior mean salience per channel. With fewer
// than 2×window entries a zero vector is returned.
func (h *HistoryTracker) SalienceTrends(window int) []float64 {
	if window <= 0 {
		window = h.trendWindow
	}
	n := len(h.salience)
	if n == 0 {
		return nil
	}
	k := len(h.salience[n-1])
	trends := make([]float64, k)
	if n < 2*window {
		return trends
	}
	for ch := 0; ch < k; ch++ {
		var recent, prior float64
		for _, s := range h.salience[n-window:] {
			recent += s[ch]
		}
		for _, s := range h.salience[n-2*window : n-window] {
			prior += s[ch]
		}
		trends[ch] = (recent - prior) / float64(window)
	}
	return trends
}

// LastSalience returns a copy of the most recently recorded salience
// vector, or nil when nothing has been recorded.
func (h *HistoryTracker) LastSalience() SalienceVector {
	if len(h.salience) == 0 {
		return nil
	}
	last := h.salience[len(h.salience)-1]
	out := make(SalienceVector, len(last))
	copy(out, last)
	return out
}

// Health classifies current health from the latest coherence and its trend.
// With no history at all the detector is still initializing and reports a
// neutral coherence of 0.5.
func (h *HistoryTracker) Health() HealthStatus {
	if len(h.coherence) == 0 {
		return HealthStatus{Status: HealthInitializing, Coherence: 0.5}
	}
	current := h.coherence[len(h.coherence)-1]
	trend := h.CoherenceTrend(h.trendWindow)

	var status HealthState
	switch {
	case current >= 0.8 && trend >= -0.1:
		status = HealthHealthy
	case current > 0.6:
		status = HealthDegraded
	case current > 0.4:
		status = HealthCritical
	default:
		status = HealthEmergency
	}
	return HealthStatus{
		Status:     status,
		Coherence:  current,
		Trend:      trend,
		HistoryLen: len(h.coherence),
	}
}
