package edi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/snappy"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	det, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sensor, residual := testWindows(t, ScenarioSolarStorm)
	for i := 0; i < 5; i++ {
		if _, err := det.Process(sensor, residual); err != nil {
			t.Fatal(err)
		}
	}

	data, err := det.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restored, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Restore(data); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.Stats() != det.Stats() {
		t.Errorf("stats diverged: %+v vs %+v", restored.Stats(), det.Stats())
	}
	if restored.controller.Knobs() != det.controller.Knobs() {
		t.Errorf("knobs diverged: %+v vs %+v", restored.controller.Knobs(), det.controller.Knobs())
	}
	if restored.Health() != det.Health() {
		t.Errorf("health diverged: %+v vs %+v", restored.Health(), det.Health())
	}

	// The restored detector keeps stepping normally.
	if _, err := restored.Process(sensor, residual); err != nil {
		t.Fatalf("Process after restore: %v", err)
	}
}

func TestRestore_Garbage(t *testing.T) {
	det, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := det.Restore([]byte("not a snapshot")); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot, got %v", err)
	}
}

// encodeSnapshot builds snapshot bytes directly, bypassing Snapshot, to
// exercise Restore against states no healthy detector would produce.
func encodeSnapshot(t *testing.T, snap detectorSnapshot) []byte {
	t.Helper()
	payload, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	return snappy.Encode(nil, payload)
}

func TestRestore_RaggedSalienceHistory(t *testing.T) {
	det, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	data := encodeSnapshot(t, detectorSnapshot{
		Version:   snapshotVersion,
		Channels:  4,
		Capacity:  1000,
		Knobs:     DefaultKnobState(),
		Coherence: []float64{0.9, 0.8, 0.7},
		Salience: [][]float64{
			{0.1, 0.1, 0.1, 0.1},
			{0.2}, // short entry: incompatible with a 4-channel detector
			{0.3, 0.3, 0.3, 0.3},
		},
	})
	if err := det.Restore(data); !errors.Is(err, ErrBadSnapshot) {
		t.Fatalf("expected ErrBadSnapshot for ragged salience history, got %v", err)
	}

	// The rejected snapshot must leave the detector untouched and usable.
	if det.Stats().HistoryLen != 0 {
		t.Errorf("failed restore mutated history: %+v", det.Stats())
	}
	if trends := det.SalienceTrends(2); len(trends) != 0 {
		t.Errorf("unexpected trends after rejected restore: %v", trends)
	}
}

func TestRestore_NonFiniteCoherence(t *testing.T) {
	det, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// JSON cannot carry IEEE infinities directly; an out-of-range literal
	// is the closest wire form and must be rejected, not absorbed.
	raw := []byte(`{"version":1,"channels":4,"capacity":1000,` +
		`"coherence_history":[0.9,1e999],` +
		`"salience_history":[[0.1,0.1,0.1,0.1],[0.2,0.2,0.2,0.2]]}`)
	if err := det.Restore(snappy.Encode(nil, raw)); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot for non-finite coherence, got %v", err)
	}
}

func TestRestore_ChannelMismatch(t *testing.T) {
	det, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	data, err := det.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ChannelNames = []string{"a", "b"}
	cfg.ChannelPairs = [][2]int{{0, 1}}
	cfg.Roles = nil
	other, err := NewDetector(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Restore(data); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot for channel mismatch, got %v", err)
	}
}

func TestRestore_TruncatesOversizedHistory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCapacity = 8
	det, err := NewDetector(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sensor, residual := testWindows(t, ScenarioBaseline)
	for i := 0; i < 8; i++ {
		if _, err := det.Process(sensor, residual); err != nil {
			t.Fatal(err)
		}
	}
	data, err := det.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	small := DefaultConfig()
	small.HistoryCapacity = 3
	restored, err := NewDetector(small)
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Restore(data); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := restored.Stats().HistoryLen; got != 3 {
		t.Errorf("restored history length = %d, want truncated to 3", got)
	}
}
