package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/raykavin/atradx/pkg/logger"
)

// RandomSearch evaluates randomly drawn parameter sets
type RandomSearch struct {
	parameters  []Parameter
	iterations  int
	parallelism int
	logger      logger.Logger
	rng         *rand.Rand
}

// Option configures a RandomSearch
type Option func(*RandomSearch)

// WithIterations sets how many parameter sets are evaluated
func WithIterations(n int) Option {
	return func(r *RandomSearch) {
		r.iterations = n
	}
}

// WithParallelism sets how many evaluations run at once
func WithParallelism(n int) Option {
	return func(r *RandomSearch) {
		r.parallelism = max(n, 1)
	}
}

// WithLogger sets the progress logger
func WithLogger(log logger.Logger) Option {
	return func(r *RandomSearch) {
		r.logger = log
	}
}

// WithSeed makes the drawn parameter sets reproducible
func WithSeed(seed int64) Option {
	return func(r *RandomSearch) {
		r.rng = rand.New(rand.NewSource(seed))
	}
}

// NewRandomSearch creates a random search over parameters
func NewRandomSearch(parameters []Parameter, options ...Option) (*RandomSearch, error) {
	if len(parameters) == 0 {
		return nil, errors.New("at least one parameter must be provided")
	}

	r := &RandomSearch{
		parameters:  parameters,
		iterations:  100,
		parallelism: 1,
		logger:      logger.Nop(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Optimize evaluates the drawn sets and returns every result, best first.
// It stops at the first evaluation error.
func (r *RandomSearch) Optimize(ctx context.Context, evaluator Evaluator, metric MetricName, maximize bool) ([]*Result, error) {
	if evaluator == nil {
		return nil, errors.New("evaluator cannot be nil")
	}

	parameterSets := make([]ParameterSet, r.iterations)
	for i := range parameterSets {
		parameterSets[i] = r.draw()
	}

	r.logger.Infof("starting random search with %d iterations", len(parameterSets))

	results, err := r.runEvaluations(ctx, evaluator, parameterSets)
	if err != nil {
		return nil, err
	}

	SortResults(results, metric, maximize)
	r.logger.Infof("random search completed with %d results", len(results))
	return results, nil
}

func (r *RandomSearch) draw() ParameterSet {
	set := make(ParameterSet, len(r.parameters))
	for _, param := range r.parameters {
		set[param.Name] = r.value(param)
	}
	return set
}

func (r *RandomSearch) value(param Parameter) float64 {
	if param.Min >= param.Max {
		return param.Min
	}

	if param.Type == TypeInt {
		low, high := int(math.Ceil(param.Min)), int(math.Floor(param.Max))
		if low >= high {
			return float64(low)
		}
		return float64(low + r.rng.Intn(high-low+1))
	}
	return param.Min + r.rng.Float64()*(param.Max-param.Min)
}

func (r *RandomSearch) runEvaluations(ctx context.Context, evaluator Evaluator, parameterSets []ParameterSet) ([]*Result, error) {
	var (
		results   = make([]*Result, 0, len(parameterSets))
		mutex     sync.Mutex
		wg        sync.WaitGroup
		errCh     = make(chan error, 1)
		semaphore = make(chan struct{}, r.parallelism)
	)

	for i, params := range parameterSets {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case err := <-errCh:
			wg.Wait()
			return nil, err
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(index int, params ParameterSet) {
			defer wg.Done()
			defer func() { <-semaphore }()

			result, err := evaluator.Evaluate(ctx, params)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("evaluating %s: %w", params, err):
				default:
				}
				return
			}

			mutex.Lock()
			results = append(results, result)
			mutex.Unlock()

			r.logger.Debugf("completed evaluation %d/%d", index+1, len(parameterSets))
		}(i, params)
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
		return results, nil
	}
}
