package edi

// Window is a T×K sample matrix: one row per time step, one column per
// telemetry channel. A nil Window is a valid empty window.
type Window [][]float64

// NewWindow allocates a zeroed T×K window.
func NewWindow(t, k int) Window {
	w := make(Window, t)
	for i := range w {
		w[i] = make([]float64, k)
	}
	return w
}

// Rows returns the number of time steps T.
func (w Window) Rows() int { return len(w) }

// Cols returns the number of channels K, taken from the first row.
func (w Window) Cols() int {
	if len(w) == 0 {
		return 0
	}
	return len(w[0])
}

// Column copies channel k into a new slice. Out-of-range k yields an empty
// slice rather than a panic; extraction treats it as a degenerate signal.
func (w Window) Column(k int) []float64 {
	if k < 0 || k >= w.Cols() {
		return nil
	}
	col := make([]float64, len(w))
	for i, row := range w {
		col[i] = row[k]
	}
	return col
}

// Tail returns a view of the trailing n rows. If the window is shorter than
// n the whole window is returned.
func (w Window) Tail(n int) Window {
	if n >= len(w) {
		return w
	}
	if n <= 0 {
		return nil
	}
	return w[len(w)-n:]
}

// rectangular reports whether every row has exactly the row-0 length, so
// column indexing is safe across the whole window.
func (w Window) rectangular() bool {
	k := w.Cols()
	for _, row := range w {
		if len(row) != k {
			return false
		}
	}
	return true
}

// sameShape reports whether two windows agree on both dimensions, including
// ragged rows.
func sameShape(a, b Window) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}
