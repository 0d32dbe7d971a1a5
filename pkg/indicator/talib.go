// Package indicator computes the indicator values consumed by the trend
// strategy. All math is delegated to go-talib; outputs are aligned with
// the input and hold zeros during each indicator's lookback.
package indicator

import "github.com/markcheno/go-talib"

// ---------------------------------------
// Volatility Indicators
// ---------------------------------------

// ATR calculates Average True Range
func ATR(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}

// ---------------------------------------
// Directional Movement
// ---------------------------------------

// ADX calculates Average Directional Movement Index
func ADX(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.Adx(high, low, close, period)
}

// PlusDI calculates Plus Directional Indicator
func PlusDI(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.PlusDI(high, low, close, period)
}

// MinusDI calculates Minus Directional Indicator
func MinusDI(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.MinusDI(high, low, close, period)
}

// Lookback returns how many leading values of each indicator are undefined
func Lookback(atrPeriod, adxPeriod int) (atr, adx, di int) {
	return atrPeriod, 2*adxPeriod - 1, adxPeriod
}
