// Package report summarizes the signals of a run.
package report

import (
	"sort"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/samber/lo"
)

// Leg is the span between two consecutive signals of a pair, held in the
// direction of the first one
type Leg struct {
	Pair       string
	Direction  core.Direction
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	Open       bool
}

// Profit returns the price change captured by the leg for one unit
func (l Leg) Profit() float64 {
	if l.Direction == core.DirectionShort {
		return l.EntryPrice - l.ExitPrice
	}
	return l.ExitPrice - l.EntryPrice
}

// Return returns the profit relative to the entry price
func (l Leg) Return() float64 {
	if l.EntryPrice == 0 {
		return 0
	}
	return l.Profit() / l.EntryPrice
}

// Duration returns the time the leg was held
func (l Leg) Duration() time.Duration {
	return l.ExitTime.Sub(l.EntryTime)
}

// Legs pairs every signal with the next one. signals must belong to one
// pair and be sorted by time. When last is a
// candle of the same pair after the final signal, the final leg is closed
// at its close and flagged Open.
func Legs(signals []*core.Signal, last *core.Candle) []Leg {
	legs := make([]Leg, 0, len(signals))
	for i := 0; i+1 < len(signals); i++ {
		entry, exit := signals[i], signals[i+1]
		legs = append(legs, Leg{
			Pair:       entry.Pair,
			Direction:  entry.Direction,
			EntryTime:  entry.Time,
			EntryPrice: entry.Price,
			ExitTime:   exit.Time,
			ExitPrice:  exit.Price,
		})
	}

	if len(signals) > 0 && last != nil {
		final := signals[len(signals)-1]
		if last.Pair == final.Pair && last.Time.After(final.Time) {
			legs = append(legs, Leg{
				Pair:       final.Pair,
				Direction:  final.Direction,
				EntryTime:  final.Time,
				EntryPrice: final.Price,
				ExitTime:   last.Time,
				ExitPrice:  last.Close,
				Open:       true,
			})
		}
	}

	return legs
}

// Summarize builds one Summary per pair, sorted by pair. last holds the
// final candle of each pair, used to close the open leg.
func Summarize(signals []*core.Signal, last map[string]core.Candle) []Summary {
	byPair := lo.GroupBy(signals, func(s *core.Signal) string { return s.Pair })
	pairs := lo.Keys(byPair)
	sort.Strings(pairs)

	summaries := make([]Summary, 0, len(pairs))
	for _, pair := range pairs {
		var final *core.Candle
		if candle, ok := last[pair]; ok {
			final = &candle
		}
		pairSignals := byPair[pair]
		summaries = append(summaries, NewSummary(pair, len(pairSignals), Legs(pairSignals, final)))
	}
	return summaries
}
