package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func signal(pair string, direction core.Direction, hour int, price float64) *core.Signal {
	from := core.RegimeNone
	switch {
	case hour == 0:
	case direction == core.DirectionLong:
		from = core.RegimeBear
	default:
		from = core.RegimeBull
	}
	return &core.Signal{
		Pair:      pair,
		Time:      start.Add(time.Duration(hour) * time.Hour),
		Direction: direction,
		From:      from,
		To:        direction.Regime(),
		Price:     price,
		Stop:      price,
	}
}

func TestLegs(t *testing.T) {
	signals := []*core.Signal{
		signal("BTCUSDT", core.DirectionLong, 0, 100),
		signal("BTCUSDT", core.DirectionShort, 5, 110),
		signal("BTCUSDT", core.DirectionLong, 9, 120),
	}

	legs := Legs(signals, nil)
	require.Len(t, legs, 2)

	assert.Equal(t, core.DirectionLong, legs[0].Direction)
	assert.Equal(t, 10.0, legs[0].Profit())
	assert.InDelta(t, 0.1, legs[0].Return(), 1e-12)
	assert.Equal(t, 5*time.Hour, legs[0].Duration())

	// short from 110 to 120 loses
	assert.Equal(t, -10.0, legs[1].Profit())
	assert.False(t, legs[1].Open)

	last := core.Candle{Pair: "BTCUSDT", Time: start.Add(12 * time.Hour), Close: 126}
	legs = Legs(signals, &last)
	require.Len(t, legs, 3)
	assert.True(t, legs[2].Open)
	assert.Equal(t, 6.0, legs[2].Profit())

	stale := core.Candle{Pair: "BTCUSDT", Time: start.Add(9 * time.Hour), Close: 126}
	assert.Len(t, Legs(signals, &stale), 2)

	assert.Empty(t, Legs(nil, &last))
}

func TestSummary(t *testing.T) {
	legs := []Leg{
		{Direction: core.DirectionLong, EntryPrice: 100, ExitPrice: 110},
		{Direction: core.DirectionShort, EntryPrice: 110, ExitPrice: 121},
		{Direction: core.DirectionLong, EntryPrice: 121, ExitPrice: 133.1},
		{Direction: core.DirectionShort, EntryPrice: 100, ExitPrice: 90},
	}
	s := NewSummary("BTCUSDT", 5, legs)

	assert.Equal(t, 4, s.Legs())
	assert.Len(t, s.WinLong, 2)
	assert.Len(t, s.WinShort, 1)
	assert.Len(t, s.LoseShort, 1)
	assert.Equal(t, 75.0, s.WinPercentage())
	assert.InDelta(t, 10+12.1+10-11, s.Profit(), 1e-9)

	// wins +10 % each, one loss of -10 %
	assert.InDelta(t, 1.0, s.Payoff(), 1e-9)
	assert.InDelta(t, 3.0, s.ProfitFactor(), 1e-9)

	// returns 10, 10, 10, -10: mean 5, std 8.66
	assert.InDelta(t, 2*5/(10*0.8660254037844386), s.SQN(), 1e-9)

	table := s.String()
	assert.Contains(t, table, "BTCUSDT")
	assert.Contains(t, table, "SQN")
}

func TestSummary_Empty(t *testing.T) {
	s := NewSummary("ETHUSDT", 1, nil)
	assert.Zero(t, s.SQN())
	assert.Zero(t, s.Payoff())
	assert.Zero(t, s.ProfitFactor())
	assert.Zero(t, s.WinPercentage())
}

func TestSummary_SaveReturns(t *testing.T) {
	s := NewSummary("BTCUSDT", 3, []Leg{
		{Direction: core.DirectionLong, EntryPrice: 100, ExitPrice: 110},
		{Direction: core.DirectionShort, EntryPrice: 110, ExitPrice: 121},
	})

	file := filepath.Join(t.TempDir(), "returns.txt")
	require.NoError(t, s.SaveReturns(file))

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "10.0000\n-10.0000\n", string(content))
}

func TestSummarize(t *testing.T) {
	signals := []*core.Signal{
		signal("ETHUSDT", core.DirectionShort, 0, 50),
		signal("BTCUSDT", core.DirectionLong, 0, 100),
		signal("BTCUSDT", core.DirectionShort, 5, 110),
	}
	last := map[string]core.Candle{
		"ETHUSDT": {Pair: "ETHUSDT", Time: start.Add(6 * time.Hour), Close: 45},
	}

	summaries := Summarize(signals, last)
	require.Len(t, summaries, 2)
	assert.Equal(t, "BTCUSDT", summaries[0].Pair)
	assert.Equal(t, 2, summaries[0].Signals)
	assert.Equal(t, 1, summaries[0].Legs())
	assert.Equal(t, "ETHUSDT", summaries[1].Pair)
	assert.Equal(t, 1, summaries[1].Legs())
	assert.Len(t, summaries[1].WinShort, 1)

	var sb strings.Builder
	WriteSummaries(&sb, summaries)
	assert.Contains(t, sb.String(), "TOTAL")

	sb.Reset()
	WriteSignals(&sb, signals)
	assert.Contains(t, sb.String(), "DIRECTION")
	assert.Contains(t, sb.String(), "bull -> bear")
}

func TestBootstrap(t *testing.T) {
	interval := Bootstrap([]float64{2, 2, 2, 2}, Mean, 100, 0.95)
	assert.Equal(t, 2.0, interval.Mean)
	assert.Equal(t, 2.0, interval.Lower)
	assert.Equal(t, 2.0, interval.Upper)
	assert.Zero(t, interval.StdDev)

	interval = Bootstrap([]float64{-5, 1, 3, 8, 10}, Mean, 500, 0.9)
	assert.LessOrEqual(t, interval.Lower, interval.Mean)
	assert.GreaterOrEqual(t, interval.Upper, interval.Mean)
	assert.GreaterOrEqual(t, interval.Lower, -5.0)
	assert.LessOrEqual(t, interval.Upper, 10.0)

	assert.Equal(t, BootstrapInterval{}, Bootstrap(nil, Mean, 100, 0.95))
}

func TestBootstrapMeasures(t *testing.T) {
	returns := []float64{10, 20, -5, -15}
	assert.InDelta(t, 1.5, Payoff(returns), 1e-12)
	assert.InDelta(t, 1.5, ProfitFactor(returns), 1e-12)

	assert.Zero(t, Payoff([]float64{1, 2}))
	assert.Zero(t, ProfitFactor([]float64{1, 2}))
}

func TestWriteHistogram(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteHistogram(&sb, []float64{-2, -1, 0, 1, 1, 2, 3}, 5))
	assert.NotEmpty(t, sb.String())

	sb.Reset()
	require.NoError(t, WriteHistogram(&sb, nil, 5))
	assert.Empty(t, sb.String())
}
