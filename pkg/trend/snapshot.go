package trend

import (
	"math"

	"github.com/raykavin/atradx/pkg/core"
)

// Snapshot holds the indicator values of one candle as computed by the host
type Snapshot struct {
	ATR     float64 `json:"atr"`
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
}

// Validate returns a *core.DataError for the first non-finite value
func (s Snapshot) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"atr", s.ATR},
		{"adx", s.ADX},
		{"plus_di", s.PlusDI},
		{"minus_di", s.MinusDI},
	}

	for _, f := range fields {
		if !isFinite(f.value) {
			return &core.DataError{Field: f.name, Value: f.value}
		}
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
