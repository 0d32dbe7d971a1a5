package optimizer

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/exchange"
	"github.com/raykavin/atradx/pkg/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evaluatorFunc func(ctx context.Context, params ParameterSet) (*Result, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, params ParameterSet) (*Result, error) {
	return f(ctx, params)
}

func TestParameterSet_Apply(t *testing.T) {
	cfg, err := ParameterSet{"atr_period": 9.6, "bear_low_multiplier": 2.25}.Apply(trend.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.ATRPeriod)
	assert.Equal(t, 2.25, cfg.BearLowMultiplier)
	assert.Equal(t, 14, cfg.ADXPeriod)

	_, err = ParameterSet{"ema": 3}.Apply(trend.DefaultConfig())
	require.Error(t, err)

	_, err = ParameterSet{"adx_period": 0}.Apply(trend.DefaultConfig())
	require.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestParameterSet_String(t *testing.T) {
	assert.Equal(t, "{adx_period: 7, atr_period: 14}", ParameterSet{"atr_period": 14, "adx_period": 7}.String())
}

func TestParseMetric(t *testing.T) {
	metric, err := ParseMetric("sqn")
	require.NoError(t, err)
	assert.Equal(t, MetricSQN, metric)

	_, err = ParseMetric("sharpe")
	require.Error(t, err)
}

func TestRandomSearch_Draw(t *testing.T) {
	search, err := NewRandomSearch(DefaultParameters(), WithSeed(1), WithIterations(50))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		set := search.draw()
		for _, param := range DefaultParameters() {
			value := set[param.Name]
			assert.GreaterOrEqual(t, value, param.Min, param.Name)
			assert.LessOrEqual(t, value, param.Max, param.Name)
			if param.Type == TypeInt {
				assert.Equal(t, math.Round(value), value, param.Name)
			}
		}
	}

	_, err = NewRandomSearch(nil)
	require.Error(t, err)
}

func TestRandomSearch_Optimize(t *testing.T) {
	search, err := NewRandomSearch(
		[]Parameter{{Name: "atr_threshold", Type: TypeFloat, Min: 0, Max: 100}},
		WithSeed(7), WithIterations(20), WithParallelism(4),
	)
	require.NoError(t, err)

	evaluator := evaluatorFunc(func(_ context.Context, params ParameterSet) (*Result, error) {
		return &Result{
			Parameters: params,
			Metrics:    map[MetricName]float64{MetricProfit: params["atr_threshold"]},
		}, nil
	})

	results, err := search.Optimize(context.Background(), evaluator, MetricProfit, true)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Metrics[MetricProfit], results[i].Metrics[MetricProfit])
	}

	results, err = search.Optimize(context.Background(), evaluator, MetricProfit, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, results[0].Metrics[MetricProfit], results[19].Metrics[MetricProfit])
}

func TestRandomSearch_Errors(t *testing.T) {
	search, err := NewRandomSearch(DefaultParameters(), WithIterations(5), WithParallelism(2))
	require.NoError(t, err)

	failing := evaluatorFunc(func(context.Context, ParameterSet) (*Result, error) {
		return nil, errors.New("boom")
	})
	_, err = search.Optimize(context.Background(), failing, MetricSQN, true)
	require.ErrorContains(t, err, "boom")

	_, err = search.Optimize(context.Background(), nil, MetricSQN, true)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = search.Optimize(ctx, failing, MetricSQN, true)
	require.Error(t, err)
}

func waveFeed(t *testing.T) *exchange.CSVFeed {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, 0, 300)
	prev := 100.0
	for i := 0; i < 300; i++ {
		price := 100 + 20*math.Sin(float64(i)/12)
		candles = append(candles, core.Candle{
			Pair:  "BTCUSDT",
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  prev,
			Close: price,
			High:  math.Max(prev, price) + 0.5,
			Low:   math.Min(prev, price) - 0.5,
		})
		prev = price
	}

	file := filepath.Join(t.TempDir(), "btc.csv")
	require.NoError(t, exchange.WriteCandles(file, candles, 6))

	feed, err := exchange.NewCSVFeed("1h", exchange.PairFeed{Pair: "BTCUSDT", File: file, Timeframe: "1h"})
	require.NoError(t, err)
	return feed
}

func TestBacktestEvaluator(t *testing.T) {
	evaluator := NewBacktestEvaluator(waveFeed(t), trend.DefaultConfig(), 200)

	result, err := evaluator.Evaluate(context.Background(), ParameterSet{"atr_period": 10, "adx_period": 10})
	require.NoError(t, err)

	assert.Equal(t, ParameterSet{"atr_period": 10, "adx_period": 10}, result.Parameters)
	assert.Greater(t, result.Metrics[MetricSignalCount], 1.0)
	// the last leg is closed at the final candle unless a signal fired on it
	assert.GreaterOrEqual(t, result.Metrics[MetricLegCount], result.Metrics[MetricSignalCount]-1)
	assert.LessOrEqual(t, result.Metrics[MetricLegCount], result.Metrics[MetricSignalCount])
	for _, metric := range Metrics {
		_, ok := result.Metrics[metric]
		assert.True(t, ok, metric)
	}

	_, err = evaluator.Evaluate(context.Background(), ParameterSet{"atr_period": -1})
	require.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestOutput(t *testing.T) {
	results := []*Result{
		{Parameters: ParameterSet{"atr_period": 10}, Metrics: map[MetricName]float64{MetricSQN: 2, MetricSignalCount: 5}},
		{Parameters: ParameterSet{"atr_period": 20}, Metrics: map[MetricName]float64{MetricSQN: 1, MetricSignalCount: 3}},
	}

	var sb strings.Builder
	WriteResults(&sb, results, MetricSQN, 1)
	assert.Contains(t, sb.String(), "atr_period")
	assert.Contains(t, sb.String(), "2.0000")
	assert.NotContains(t, sb.String(), "1.0000")

	file := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, SaveResultsToCSV(results, file))
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank,duration,atr_period,profit"))
}
