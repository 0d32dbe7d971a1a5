package trend

import "github.com/raykavin/atradx/pkg/core"

// Config holds the parameters of the adaptive ATR/ADX strategy.
//
// ATRPeriod also sets the length of the high/low window. The indicator
// periods must match the ones the host uses to build each Snapshot.
type Config struct {
	ATRPeriod          int     `mapstructure:"atr_period" json:"atr_period"`
	ADXPeriod          int     `mapstructure:"adx_period" json:"adx_period"`
	ATRThreshold       float64 `mapstructure:"atr_threshold" json:"atr_threshold"`
	BullHighMultiplier float64 `mapstructure:"bull_high_multiplier" json:"bull_high_multiplier"`
	BullLowMultiplier  float64 `mapstructure:"bull_low_multiplier" json:"bull_low_multiplier"`
	BearHighMultiplier float64 `mapstructure:"bear_high_multiplier" json:"bear_high_multiplier"`
	BearLowMultiplier  float64 `mapstructure:"bear_low_multiplier" json:"bear_low_multiplier"`
}

// DefaultConfig returns the parameters of the reference TradingView script
func DefaultConfig() Config {
	return Config{
		ATRPeriod:          14,
		ADXPeriod:          14,
		ATRThreshold:       25,
		BullHighMultiplier: 3.5,
		BullLowMultiplier:  1.75,
		BearHighMultiplier: 3.5,
		BearLowMultiplier:  1.75,
	}
}

// Validate returns a *core.ConfigurationError for the first invalid field
func (c Config) Validate() error {
	periods := []struct {
		name  string
		value int
	}{
		{"atr_period", c.ATRPeriod},
		{"adx_period", c.ADXPeriod},
	}
	for _, p := range periods {
		if p.value <= 0 {
			return &core.ConfigurationError{Field: p.name, Reason: "must be greater than zero"}
		}
	}

	if !isFinite(c.ATRThreshold) {
		return &core.ConfigurationError{Field: "atr_threshold", Reason: "must be a finite number"}
	}

	multipliers := []struct {
		name  string
		value float64
	}{
		{"bull_high_multiplier", c.BullHighMultiplier},
		{"bull_low_multiplier", c.BullLowMultiplier},
		{"bear_high_multiplier", c.BearHighMultiplier},
		{"bear_low_multiplier", c.BearLowMultiplier},
	}
	for _, m := range multipliers {
		if !isFinite(m.value) || m.value < 0 {
			return &core.ConfigurationError{Field: m.name, Reason: "must be a finite non-negative number"}
		}
	}

	return nil
}

// Multipliers returns the selector built from the configuration
func (c Config) Multipliers() Multipliers {
	return Multipliers{
		Threshold: c.ATRThreshold,
		BullHigh:  c.BullHighMultiplier,
		BullLow:   c.BullLowMultiplier,
		BearHigh:  c.BearHighMultiplier,
		BearLow:   c.BearLowMultiplier,
	}
}

// WarmupPeriod is the number of candles the host needs before the
// indicators are defined: ATR needs one extra candle for the true range
// and ADX smooths DX over a second period.
func (c Config) WarmupPeriod() int {
	return max(c.ATRPeriod+1, 2*c.ADXPeriod)
}
