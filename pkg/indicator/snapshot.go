package indicator

import (
	"errors"
	"fmt"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/trend"
)

// ErrInsufficientData is returned while the dataframe is shorter than the
// indicator lookback
var ErrInsufficientData = errors.New("insufficient data")

// Metadata keys written by Fill
const (
	KeyATR     = "atr"
	KeyADX     = "adx"
	KeyPlusDI  = "plus_di"
	KeyMinusDI = "minus_di"
)

// Series holds the four indicator series aligned with a dataframe
type Series map[string]core.Series[float64]

// Fill computes ATR, ADX and both directional indicators over the dataframe
func Fill(df *core.Dataframe, atrPeriod, adxPeriod int) Series {
	return Series{
		KeyATR:     ATR(df.High, df.Low, df.Close, atrPeriod),
		KeyADX:     ADX(df.High, df.Low, df.Close, adxPeriod),
		KeyPlusDI:  PlusDI(df.High, df.Low, df.Close, adxPeriod),
		KeyMinusDI: MinusDI(df.High, df.Low, df.Close, adxPeriod),
	}
}

// Snapshot returns the indicator values of the last candle of the dataframe.
// It fails with ErrInsufficientData while any indicator is still inside
// its lookback.
func Snapshot(df *core.Dataframe, atrPeriod, adxPeriod int) (trend.Snapshot, error) {
	atrLookback, adxLookback, diLookback := Lookback(atrPeriod, adxPeriod)

	need := max(atrLookback, adxLookback, diLookback) + 1
	if df.Len() < need {
		return trend.Snapshot{}, fmt.Errorf("%w: %d candles, need %d", ErrInsufficientData, df.Len(), need)
	}

	series := Fill(df, atrPeriod, adxPeriod)
	return trend.Snapshot{
		ATR:     series[KeyATR].Last(0),
		ADX:     series[KeyADX].Last(0),
		PlusDI:  series[KeyPlusDI].Last(0),
		MinusDI: series[KeyMinusDI].Last(0),
	}, nil
}
