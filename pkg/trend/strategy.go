// Package trend implements the adaptive ATR/ADX trailing stop strategy.
//
// A Strategy receives candles through Observe and the matching indicator
// values through Evaluate, one candle at a time and in chronological order.
// It keeps a trend regime and a volatility adjusted trailing stop, and
// notifies its Emitter exactly when the regime changes.
//
// A Strategy is not safe for concurrent use.
package trend

import (
	"errors"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
)

var (
	// ErrNotObserved is returned by Evaluate when no candle was observed yet
	ErrNotObserved = errors.New("evaluate called before observe")
	// ErrAlreadyEvaluated is returned by a second Evaluate of the same candle
	ErrAlreadyEvaluated = errors.New("candle already evaluated")
)

// State is a copy of the mutable state of a Strategy
type State struct {
	Regime    core.Regime
	Stop      float64
	NewTrend  bool
	WindowMax float64
	WindowMin float64
	Filled    int
}

// Strategy is the per-instrument decision module
type Strategy struct {
	config      Config
	multipliers Multipliers
	window      *Window
	machine     *Machine
	emitter     Emitter
	log         logger.Logger
	now         func() time.Time

	last      core.Candle
	observed  bool
	evaluated bool
}

// Option configures a Strategy
type Option func(*Strategy)

// WithLogger logs every evaluation at debug level
func WithLogger(log logger.Logger) Option {
	return func(s *Strategy) {
		s.log = log
	}
}

// WithClock overrides the clock used to stamp signals
func WithClock(now func() time.Time) Option {
	return func(s *Strategy) {
		s.now = now
	}
}

// New validates the configuration and returns a strategy in RegimeNone.
// A nil emitter discards signals; they are still returned by Evaluate.
func New(config Config, emitter Emitter, options ...Option) (*Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	window, err := NewWindow(config.ATRPeriod)
	if err != nil {
		return nil, err
	}

	if emitter == nil {
		emitter = Discard
	}

	s := &Strategy{
		config:      config,
		multipliers: config.Multipliers(),
		window:      window,
		machine:     NewMachine(),
		emitter:     emitter,
		log:         logger.Nop(),
		now:         time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s, nil
}

// Config returns the configuration the strategy was built with
func (s *Strategy) Config() Config { return s.config }

// Observe pushes the candle high and low into the window. It must be called
// once per candle, before Evaluate, including warm-up candles.
func (s *Strategy) Observe(candle core.Candle) {
	s.window.Update(candle.High, candle.Low)
	s.last = candle
	s.observed = true
	s.evaluated = false
}

// Evaluate runs the regime check for the last observed candle. It returns
// the emitted signal, or nil when the regime did not change. Invalid
// inputs return a *core.DataError and leave the state untouched.
func (s *Strategy) Evaluate(snap Snapshot) (*core.Signal, error) {
	if !s.observed {
		return nil, ErrNotObserved
	}
	if s.evaluated {
		return nil, ErrAlreadyEvaluated
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if !isFinite(s.last.Close) {
		return nil, &core.DataError{Field: "close", Value: s.last.Close}
	}

	s.evaluated = true
	transition := s.machine.Evaluate(s.last.Close, s.window, snap, s.multipliers)

	s.log.WithFields(map[string]any{
		"pair":   s.last.Pair,
		"trend":  s.machine.Regime(),
		"max":    s.window.Max(),
		"min":    s.window.Min(),
		"stop":   s.machine.Stop(),
		"price":  s.last.Close,
		"atr":    snap.ATR,
		"adx":    snap.ADX,
		"filled": s.window.Filled(),
	}).Debug("evaluated candle")

	if transition == nil {
		return nil, nil
	}

	signal := core.Signal{
		Pair:      s.last.Pair,
		Time:      s.last.Time,
		Direction: transition.To.Direction(),
		From:      transition.From,
		To:        transition.To,
		Price:     s.last.Close,
		Stop:      transition.Stop,
		CreatedAt: s.now(),
	}

	s.emitter.Notify(signal)
	return &signal, nil
}

// Step observes the candle and evaluates it with the given snapshot
func (s *Strategy) Step(candle core.Candle, snap Snapshot) (*core.Signal, error) {
	s.Observe(candle)
	return s.Evaluate(snap)
}

// Regime returns the current trend regime
func (s *Strategy) Regime() core.Regime { return s.machine.Regime() }

// Stop returns the current stop level
func (s *Strategy) Stop() float64 { return s.machine.Stop() }

// WindowMax returns the highest high of the window
func (s *Strategy) WindowMax() float64 { return s.window.Max() }

// WindowMin returns the lowest low of the window
func (s *Strategy) WindowMin() float64 { return s.window.Min() }

// State returns a copy of the strategy state
func (s *Strategy) State() State {
	return State{
		Regime:    s.machine.Regime(),
		Stop:      s.machine.Stop(),
		NewTrend:  s.machine.NewTrend(),
		WindowMax: s.window.Max(),
		WindowMin: s.window.Min(),
		Filled:    s.window.Filled(),
	}
}
