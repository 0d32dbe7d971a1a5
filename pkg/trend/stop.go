package trend

import "github.com/raykavin/atradx/pkg/core"

// Stop is a trailing stop level that only moves in favor of the current
// regime. After Reset the next candidate is adopted unconditionally.
type Stop struct {
	level    float64
	newTrend bool
}

// Level returns the current stop price
func (s *Stop) Level() float64 { return s.level }

// NewTrend reports whether the stop is waiting to be seeded for a new regime
func (s *Stop) NewTrend() bool { return s.newTrend }

// Reset marks the start of a new regime
func (s *Stop) Reset() { s.newTrend = true }

// Candidate returns the raw stop for the regime: windowMax - atr*mult for a
// bull trend and windowMin + atr*mult for a bear trend.
func Candidate(regime core.Regime, window *Window, atr, adx float64, m Multipliers) (float64, bool) {
	switch regime {
	case core.RegimeBull:
		return window.Max() - atr*m.Bull(adx), true
	case core.RegimeBear:
		return window.Min() + atr*m.Bear(adx), true
	default:
		return 0, false
	}
}

// Trail computes the candidate for the regime and adopts it when it
// tightens the stop or a new trend has just started. It reports whether
// the level changed hands.
func (s *Stop) Trail(regime core.Regime, window *Window, atr, adx float64, m Multipliers) bool {
	candidate, ok := Candidate(regime, window, atr, adx, m)
	if !ok {
		return false
	}

	tighter := (regime == core.RegimeBull && candidate > s.level) ||
		(regime == core.RegimeBear && candidate < s.level)

	if !tighter && !s.newTrend {
		return false
	}

	s.level = candidate
	s.newTrend = false
	return true
}
