package trend

import (
	"github.com/raykavin/atradx/pkg/core"
)

// Window keeps the most recent highs and lows in two parallel ring buffers
// and exposes their extremes.
//
// Both buffers always hold exactly Capacity slots. Slots that were never
// written keep the zero sentinel and take part in Max and Min until the
// window is warm, so during warm-up Min is pulled toward zero.
type Window struct {
	highs  []float64
	lows   []float64
	cursor int
	filled int

	max float64
	min float64
}

// NewWindow creates a window holding the last capacity highs and lows
func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, &core.ConfigurationError{Field: "atr_period", Reason: "must be greater than zero"}
	}

	return &Window{
		highs: make([]float64, capacity),
		lows:  make([]float64, capacity),
	}, nil
}

// Update overwrites the oldest slot with the given high and low and
// recomputes the extremes over the whole buffer.
func (w *Window) Update(high, low float64) {
	w.highs[w.cursor] = high
	w.lows[w.cursor] = low
	w.cursor = (w.cursor + 1) % len(w.highs)

	if w.filled < len(w.highs) {
		w.filled++
	}

	w.max = core.Series[float64](w.highs).Max()
	w.min = core.Series[float64](w.lows).Min()
}

// Max returns the highest high in the buffer
func (w *Window) Max() float64 { return w.max }

// Min returns the lowest low in the buffer
func (w *Window) Min() float64 { return w.min }

// Capacity returns the number of slots of each buffer
func (w *Window) Capacity() int { return len(w.highs) }

// Filled returns how many slots hold real values
func (w *Window) Filled() int { return w.filled }

// Warm reports whether every slot has been written at least once
func (w *Window) Warm() bool { return w.filled == len(w.highs) }
