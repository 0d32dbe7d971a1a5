package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
	"github.com/raykavin/atradx/pkg/trend"
)

// PairStatus is the strategy state of one pair at a point in time
type PairStatus struct {
	Pair    string
	Started bool
	Candles int
	trend.State
}

// Runner dispatches candles of several pairs to one Controller per pair.
// Each controller owns its own strategy state. A Runner is safe for
// concurrent use; candles are processed one at a time.
type Runner struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
	log         logger.Logger
}

// NewRunner creates an empty runner
func NewRunner(log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{controllers: make(map[string]*Controller), log: log}
}

// Add registers the controller of a pair
func (r *Runner) Add(pair string, controller *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.controllers[pair]; ok {
		return fmt.Errorf("pair %s already registered", pair)
	}
	r.controllers[pair] = controller
	return nil
}

// Controller returns the controller of a pair
func (r *Runner) Controller(pair string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.controllers[pair]
	return c, ok
}

// Pairs returns the registered pairs in alphabetical order
func (r *Runner) Pairs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairs := make([]string, 0, len(r.controllers))
	for pair := range r.controllers {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Start starts every controller
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.controllers {
		c.Start()
	}
}

// Status returns the state of every pair, sorted by pair
func (r *Runner) Status() []PairStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make([]PairStatus, 0, len(r.controllers))
	for pair, c := range r.controllers {
		status = append(status, PairStatus{
			Pair:    pair,
			Started: c.started,
			Candles: c.Dataframe().Len(),
			State:   c.Strategy().State(),
		})
	}
	sort.Slice(status, func(i, j int) bool { return status[i].Pair < status[j].Pair })
	return status
}

// OnCandle implements core.CandleSubscriber
func (r *Runner) OnCandle(candle core.Candle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	controller, ok := r.controllers[candle.Pair]
	if !ok {
		r.log.WithField("pair", candle.Pair).Warn("candle for unknown pair")
		return
	}
	controller.OnCandle(candle)
}
