package trend

// Multipliers selects the ATR distance of the stop from the trend strength.
//
// The "High" factors are used while ADX is below Threshold and the "Low"
// factors once it reaches it. The names follow the configuration keys of
// the strategy and are kept as is for numeric parity.
type Multipliers struct {
	Threshold float64
	BullHigh  float64
	BullLow   float64
	BearHigh  float64
	BearLow   float64
}

// Bull returns the multiplier applied below the window max in a bull trend
func (m Multipliers) Bull(adx float64) float64 {
	if adx < m.Threshold {
		return m.BullHigh
	}
	return m.BullLow
}

// Bear returns the multiplier applied above the window min in a bear trend
func (m Multipliers) Bear(adx float64) float64 {
	if adx < m.Threshold {
		return m.BearHigh
	}
	return m.BearLow
}
