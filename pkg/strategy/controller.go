// Package strategy drives a trend strategy from a stream of candles,
// computing the indicator snapshot of each candle on the way.
package strategy

import (
	"fmt"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/indicator"
	"github.com/raykavin/atradx/pkg/logger"
	"github.com/raykavin/atradx/pkg/trend"
)

// DefaultHistorySize is the number of candles kept for indicator computation
const DefaultHistorySize = 500

// Controller feeds one pair's candles to a trend.Strategy
type Controller struct {
	pair             string
	strategy         *trend.Strategy
	dataframeManager *DataframeManager
	log              logger.Logger
	warmup           int
	historySize      int
	started          bool
	onError          func(error)
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithLogger sets the controller logger, also used by the strategy
func WithLogger(log logger.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = log
	}
}

// WithHistorySize bounds the candles used to compute indicators. It is
// raised to the warm-up period when smaller.
func WithHistorySize(size int) ControllerOption {
	return func(c *Controller) {
		c.historySize = size
	}
}

// WithErrorHandler is called with every error raised while processing a
// candle received through OnCandle
func WithErrorHandler(handler func(error)) ControllerOption {
	return func(c *Controller) {
		c.onError = handler
	}
}

// NewController builds the strategy for pair and wires the emitters.
// Candles are only observed until Start is called.
func NewController(pair string, config trend.Config, emitter trend.Emitter, options ...ControllerOption) (*Controller, error) {
	c := &Controller{
		pair:        pair,
		log:         logger.Nop(),
		warmup:      config.WarmupPeriod(),
		historySize: DefaultHistorySize,
	}

	for _, option := range options {
		option(c)
	}

	c.historySize = max(c.historySize, c.warmup)
	c.dataframeManager = NewDataframeManager(pair, c.historySize)

	str, err := trend.New(config, emitter, trend.WithLogger(c.log.WithField("pair", pair)))
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", pair, err)
	}
	c.strategy = str

	return c, nil
}

// Start enables evaluation. Candles received before Start only warm up the
// window and the indicators, which is how history is replayed after a restart.
func (c *Controller) Start() {
	c.started = true
}

// Strategy returns the controlled strategy
func (c *Controller) Strategy() *trend.Strategy {
	return c.strategy
}

// Dataframe returns the candle history used for indicators
func (c *Controller) Dataframe() *core.Dataframe {
	return c.dataframeManager.GetDataframe()
}

// OnCandle implements core.CandleSubscriber
func (c *Controller) OnCandle(candle core.Candle) {
	if _, err := c.Process(candle); err != nil {
		c.log.WithError(err).Error("candle processing failed")
		if c.onError != nil {
			c.onError(err)
		}
	}
}

// Process handles a closed candle. The window is updated for every
// candle; the regime is only evaluated once started and warmed up.
// Partial candles are ignored.
func (c *Controller) Process(candle core.Candle) (*core.Signal, error) {
	if !candle.Complete {
		return nil, nil
	}

	if candle.Pair != "" && candle.Pair != c.pair {
		return nil, fmt.Errorf("controller %s received candle of %s", c.pair, candle.Pair)
	}

	if c.dataframeManager.IsLateCandle(candle) {
		return nil, fmt.Errorf("%w: %s at %s", core.ErrLateCandle, c.pair, candle.Time)
	}

	c.dataframeManager.UpdateDataFrame(candle)
	c.strategy.Observe(candle)

	if !c.started || !c.dataframeManager.HasSufficientData(c.warmup) {
		return nil, nil
	}

	cfg := c.strategy.Config()
	snap, err := indicator.Snapshot(c.dataframeManager.GetDataframe(), cfg.ATRPeriod, cfg.ADXPeriod)
	if err != nil {
		return nil, err
	}

	return c.strategy.Evaluate(snap)
}
