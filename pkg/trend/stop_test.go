package trend

import (
	"testing"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/stretchr/testify/require"
)

func scenarioWindow(t *testing.T) *Window {
	t.Helper()

	window, err := NewWindow(3)
	require.NoError(t, err)
	window.Update(10, 8)
	window.Update(12, 9)
	window.Update(9, 7)
	return window
}

func TestCandidate(t *testing.T) {
	window := scenarioWindow(t)
	m := Multipliers{Threshold: 25, BullHigh: 2, BullLow: 1, BearHigh: 2, BearLow: 1}

	bull, ok := Candidate(core.RegimeBull, window, 1, 10, m)
	require.True(t, ok)
	require.Equal(t, 10.0, bull)

	bear, ok := Candidate(core.RegimeBear, window, 1, 30, m)
	require.True(t, ok)
	require.Equal(t, 8.0, bear)

	_, ok = Candidate(core.RegimeNone, window, 1, 10, m)
	require.False(t, ok)
}

func TestStop_BullRatchet(t *testing.T) {
	window := scenarioWindow(t)
	m := Multipliers{Threshold: 25, BullHigh: 2, BullLow: 1}

	stop := Stop{}
	stop.Reset()
	require.True(t, stop.Trail(core.RegimeBull, window, 1, 10, m))
	require.Equal(t, 10.0, stop.Level())
	require.False(t, stop.NewTrend())

	// wider candidate is ignored
	require.False(t, stop.Trail(core.RegimeBull, window, 3, 10, m))
	require.Equal(t, 10.0, stop.Level())

	// tighter candidate is adopted
	require.True(t, stop.Trail(core.RegimeBull, window, 1, 30, m))
	require.Equal(t, 11.0, stop.Level())
}

func TestStop_BearRatchet(t *testing.T) {
	window := scenarioWindow(t)
	m := Multipliers{Threshold: 25, BearHigh: 2, BearLow: 1}

	stop := Stop{}
	stop.Reset()
	require.True(t, stop.Trail(core.RegimeBear, window, 1, 10, m))
	require.Equal(t, 9.0, stop.Level())

	require.False(t, stop.Trail(core.RegimeBear, window, 2, 10, m))
	require.Equal(t, 9.0, stop.Level())

	require.True(t, stop.Trail(core.RegimeBear, window, 0.5, 30, m))
	require.Equal(t, 7.5, stop.Level())
}

func TestStop_ResetIgnoresPriorLevel(t *testing.T) {
	window := scenarioWindow(t)
	m := Multipliers{Threshold: 25, BullHigh: 2, BullLow: 2, BearHigh: 2, BearLow: 2}

	stop := Stop{}
	stop.Reset()
	stop.Trail(core.RegimeBull, window, 1, 10, m)
	require.Equal(t, 10.0, stop.Level())

	// a bear candidate above the previous bull stop is still adopted once
	stop.Reset()
	require.True(t, stop.Trail(core.RegimeBear, window, 3, 10, m))
	require.Equal(t, 13.0, stop.Level())
}
