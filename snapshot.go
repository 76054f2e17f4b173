package edi

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/snappy"
)

// snapshotVersion identifies the snapshot wire format.
const snapshotVersion = 1

// detectorSnapshot is the serialized mutable state of a detector. The
// detector itself never persists anything; Snapshot/Restore exist so a
// caller can carry state across process restarts if it chooses to.
type detectorSnapshot struct {
	Version      int         `json:"version"`
	Channels     int         `json:"channels"`
	Capacity     int         `json:"capacity"`
	Steps        int64       `json:"steps"`
	SkippedPairs int64       `json:"skipped_pairs"`
	Knobs        KnobState   `json:"knobs"`
	Coherence    []float64   `json:"coherence_history"`
	Salience     [][]float64 `json:"salience_history"`
}

// Snapshot serializes the detector's mutable state (knob state, history
// FIFOs, counters) as snappy-compressed JSON. Configuration is not
// included; Restore expects a detector built from a compatible Config.
func (d *Detector) Snapshot() ([]byte, error) {
	snap := detectorSnapshot{
		Version:      snapshotVersion,
		Channels:     len(d.cfg.ChannelNames),
		Capacity:     d.history.capacity,
		Steps:        d.steps,
		SkippedPairs: d.skippedPairs,
		Knobs:        d.controller.Knobs(),
		Coherence:    d.history.coherence,
		Salience:     d.history.salience,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return snappy.Encode(nil, payload), nil
}

// Restore replaces the detector's mutable state with a previously taken
// snapshot. The snapshot must come from a detector with the same channel
// count; history longer than the current capacity is truncated to the
// newest entries.
func (d *Detector) Restore(data []byte) error {
	payload, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	var snap detectorSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, snap.Version)
	}
	if snap.Channels != len(d.cfg.ChannelNames) {
		return fmt.Errorf("%w: snapshot has %d channels, detector has %d",
			ErrBadSnapshot, snap.Channels, len(d.cfg.ChannelNames))
	}
	if len(snap.Coherence) != len(snap.Salience) {
		return fmt.Errorf("%w: history lengths disagree", ErrBadSnapshot)
	}
	for i, s := range snap.Salience {
		if len(s) != snap.Channels {
			return fmt.Errorf("%w: salience entry %d has %d channels, want %d",
				ErrBadSnapshot, i, len(s), snap.Channels)
		}
	}
	for _, c := range snap.Coherence {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite coherence in history", ErrBadSnapshot)
		}
	}

	if over := len(snap.Coherence) - d.history.capacity; over > 0 {
		snap.Coherence = snap.Coherence[over:]
		snap.Salience = snap.Salience[over:]
	}

	h := NewHistoryTracker(d.history.capacity, d.history.trendWindow)
	for i := range snap.Coherence {
		h.Record(snap.Coherence[i], snap.Salience[i])
	}
	d.history = h
	d.controller.knobs = KnobState{
		Focus:        clamp01(snap.Knobs.Focus),
		Entanglement: clamp01(snap.Knobs.Entanglement),
		Interference: clamp01(snap.Knobs.Interference),
		Exploration:  clamp01(snap.Knobs.Exploration),
	}
	d.steps = snap.Steps
	d.skippedPairs = snap.SkippedPairs
	return nil
}
