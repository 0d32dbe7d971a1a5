package indicator

import (
	"errors"
	"testing"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/stretchr/testify/require"
)

// uptrend builds candles with a constant true range of 2 and a steady
// upward directional movement of 1 per candle.
func uptrend(size int) *core.Dataframe {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	df := &core.Dataframe{Pair: "BTCUSDT"}
	for i := 0; i < size; i++ {
		price := 100 + float64(i)
		df.Open = append(df.Open, price)
		df.Close = append(df.Close, price)
		df.High = append(df.High, price+1)
		df.Low = append(df.Low, price-1)
		df.Volume = append(df.Volume, 1)
		df.Time = append(df.Time, start.Add(time.Duration(i)*time.Hour))
	}
	return df
}

func TestSnapshot_Uptrend(t *testing.T) {
	snap, err := Snapshot(uptrend(40), 14, 14)
	require.NoError(t, err)

	require.InDelta(t, 2.0, snap.ATR, 1e-9)
	require.InDelta(t, 50.0, snap.PlusDI, 1e-9)
	require.InDelta(t, 0.0, snap.MinusDI, 1e-9)
	require.InDelta(t, 100.0, snap.ADX, 1e-9)
	require.NoError(t, snap.Validate())
}

func TestSnapshot_InsufficientData(t *testing.T) {
	_, err := Snapshot(uptrend(27), 14, 14)
	require.True(t, errors.Is(err, ErrInsufficientData))

	_, err = Snapshot(uptrend(28), 14, 14)
	require.NoError(t, err)

	_, err = Snapshot(uptrend(20), 20, 5)
	require.True(t, errors.Is(err, ErrInsufficientData))
}

func TestFill_AlignedWithInput(t *testing.T) {
	df := uptrend(30)
	series := Fill(df, 10, 5)

	for _, key := range []string{KeyATR, KeyADX, KeyPlusDI, KeyMinusDI} {
		require.Len(t, series[key], df.Len(), key)
	}

	atrLookback, adxLookback, _ := Lookback(10, 5)
	require.Zero(t, series[KeyATR][atrLookback-1])
	require.NotZero(t, series[KeyATR][atrLookback])
	require.Zero(t, series[KeyADX][adxLookback-1])
	require.NotZero(t, series[KeyADX][adxLookback])
}
