package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/exchange"
	"github.com/raykavin/atradx/pkg/report"
	"github.com/raykavin/atradx/pkg/strategy"
	"github.com/raykavin/atradx/pkg/trend"
	"github.com/samber/lo"
)

// BacktestEvaluator scores a parameter set by replaying a CSV feed
// through one controller per pair. The feed is only read and may be
// shared by concurrent evaluations.
type BacktestEvaluator struct {
	feed        *exchange.CSVFeed
	base        trend.Config
	historySize int
}

// NewBacktestEvaluator creates an evaluator starting from base
func NewBacktestEvaluator(feed *exchange.CSVFeed, base trend.Config, historySize int) *BacktestEvaluator {
	return &BacktestEvaluator{feed: feed, base: base, historySize: historySize}
}

type signalRecorder struct {
	mu      sync.Mutex
	signals []*core.Signal
}

func (r *signalRecorder) Notify(signal core.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, &signal)
}

// Evaluate implements Evaluator
func (e *BacktestEvaluator) Evaluate(ctx context.Context, params ParameterSet) (*Result, error) {
	started := time.Now()

	cfg, err := params.Apply(e.base)
	if err != nil {
		return nil, err
	}

	recorder := &signalRecorder{}
	runner := strategy.NewRunner(nil)
	for pair := range e.feed.Candles {
		controller, err := strategy.NewController(pair, cfg, recorder, strategy.WithHistorySize(e.historySize))
		if err != nil {
			return nil, err
		}
		if err := runner.Add(pair, controller); err != nil {
			return nil, err
		}
	}
	runner.Start()

	last := make(map[string]core.Candle)
	tracker := candleFunc(func(c core.Candle) { last[c.Pair] = c })
	if err := e.feed.Replay(ctx, runner, tracker); err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	return &Result{
		Parameters: params,
		Metrics:    collectMetrics(report.Summarize(recorder.signals, last)),
		Duration:   time.Since(started),
	}, nil
}

// collectMetrics aggregates the pair summaries. Win rate, payoff and
// profit factor are weighted by legs; SQN is averaged over pairs.
func collectMetrics(summaries []report.Summary) map[MetricName]float64 {
	metrics := lo.SliceToMap(Metrics, func(m MetricName) (MetricName, float64) { return m, 0 })

	var legs, wins int
	for _, summary := range summaries {
		n := summary.Legs()
		metrics[MetricSignalCount] += float64(summary.Signals)
		metrics[MetricProfit] += summary.Profit()
		metrics[MetricSQN] += summary.SQN() / float64(len(summaries))
		metrics[MetricPayoff] += summary.Payoff() * float64(n)
		metrics[MetricProfitFactor] += summary.ProfitFactor() * float64(n)
		legs += n
		wins += len(summary.Win())
	}

	metrics[MetricLegCount] = float64(legs)
	if legs > 0 {
		metrics[MetricWinRate] = float64(wins) / float64(legs)
		metrics[MetricPayoff] /= float64(legs)
		metrics[MetricProfitFactor] /= float64(legs)
	}
	return metrics
}

type candleFunc func(core.Candle)

func (f candleFunc) OnCandle(c core.Candle) { f(c) }
