// Package optimizer searches the strategy parameters that score best on
// a replayed candle history.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/raykavin/atradx/pkg/trend"
	"github.com/samber/lo"
)

// ParameterType defines the data type of a parameter
type ParameterType string

const (
	TypeInt   ParameterType = "int"
	TypeFloat ParameterType = "float"
)

// Parameter is a strategy setting explored within [Min, Max]. Name is the
// configuration key of the setting.
type Parameter struct {
	Name string
	Type ParameterType
	Min  float64
	Max  float64
}

// ParameterSet holds one value per parameter name
type ParameterSet map[string]float64

// MetricName identifies a score computed for a parameter set
type MetricName string

const (
	MetricProfit       MetricName = "profit"
	MetricWinRate      MetricName = "win_rate"
	MetricPayoff       MetricName = "payoff"
	MetricProfitFactor MetricName = "profit_factor"
	MetricSQN          MetricName = "sqn"
	MetricSignalCount  MetricName = "signal_count"
	MetricLegCount     MetricName = "leg_count"
)

// Metrics lists every metric produced by the backtest evaluator
var Metrics = []MetricName{
	MetricProfit, MetricWinRate, MetricPayoff, MetricProfitFactor, MetricSQN, MetricSignalCount, MetricLegCount,
}

// ParseMetric validates a metric name
func ParseMetric(name string) (MetricName, error) {
	metric := MetricName(name)
	if !lo.Contains(Metrics, metric) {
		return "", fmt.Errorf("unknown metric %q", name)
	}
	return metric, nil
}

// Result is the outcome of evaluating one parameter set
type Result struct {
	Parameters ParameterSet
	Metrics    map[MetricName]float64
	Duration   time.Duration
}

// Evaluator scores a parameter set
type Evaluator interface {
	Evaluate(ctx context.Context, params ParameterSet) (*Result, error)
}

// DefaultParameters returns the search space of every strategy setting
func DefaultParameters() []Parameter {
	return []Parameter{
		{Name: "atr_period", Type: TypeInt, Min: 7, Max: 28},
		{Name: "adx_period", Type: TypeInt, Min: 7, Max: 28},
		{Name: "atr_threshold", Type: TypeFloat, Min: 15, Max: 35},
		{Name: "bull_high_multiplier", Type: TypeFloat, Min: 1, Max: 5},
		{Name: "bull_low_multiplier", Type: TypeFloat, Min: 0.5, Max: 3},
		{Name: "bear_high_multiplier", Type: TypeFloat, Min: 1, Max: 5},
		{Name: "bear_low_multiplier", Type: TypeFloat, Min: 0.5, Max: 3},
	}
}

// Apply returns base with the values of the set. Unknown names are rejected.
func (p ParameterSet) Apply(base trend.Config) (trend.Config, error) {
	cfg := base
	for name, value := range p {
		switch name {
		case "atr_period":
			cfg.ATRPeriod = int(math.Round(value))
		case "adx_period":
			cfg.ADXPeriod = int(math.Round(value))
		case "atr_threshold":
			cfg.ATRThreshold = value
		case "bull_high_multiplier":
			cfg.BullHighMultiplier = value
		case "bull_low_multiplier":
			cfg.BullLowMultiplier = value
		case "bear_high_multiplier":
			cfg.BearHighMultiplier = value
		case "bear_low_multiplier":
			cfg.BearLowMultiplier = value
		default:
			return trend.Config{}, fmt.Errorf("unknown parameter %q", name)
		}
	}
	return cfg, cfg.Validate()
}

// String formats the set with sorted names
func (p ParameterSet) String() string {
	names := lo.Keys(p)
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %g", name, p[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SortResults orders results by metric, best first
func SortResults(results []*Result, metric MetricName, maximize bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Metrics[metric], results[j].Metrics[metric]
		if maximize {
			return a > b
		}
		return a < b
	})
}
