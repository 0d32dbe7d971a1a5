package core

import (
	"fmt"
	"time"
)

// SignalFilter defines a function type for filtering journaled signals
type SignalFilter func(signal Signal) bool

// Direction is the side advised by a signal
type Direction string

// Regime is the trend classification held by a strategy
type Regime string

// Signal directions
const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Trend regimes
const (
	RegimeNone Regime = "none"
	RegimeBull Regime = "bull"
	RegimeBear Regime = "bear"
)

// Regime returns the regime a signal in this direction moves into
func (d Direction) Regime() Regime {
	switch d {
	case DirectionLong:
		return RegimeBull
	case DirectionShort:
		return RegimeBear
	default:
		return RegimeNone
	}
}

// Direction returns the direction advised when entering the regime,
// empty for RegimeNone
func (r Regime) Direction() Direction {
	switch r {
	case RegimeBull:
		return DirectionLong
	case RegimeBear:
		return DirectionShort
	default:
		return ""
	}
}

// Signal is a regime transition reported to the host
type Signal struct {
	ID        int64     `db:"id" json:"id" gorm:"primaryKey;autoIncrement"`
	Pair      string    `db:"pair" json:"pair" gorm:"index"`
	Time      time.Time `db:"time" json:"time" gorm:"index"`
	Direction Direction `db:"direction" json:"direction"`
	From      Regime    `db:"from_regime" json:"from" gorm:"column:from_regime"`
	To        Regime    `db:"to_regime" json:"to" gorm:"column:to_regime"`

	// Price is the close that triggered the transition. Stop is the level
	// that was breached, zero for the initial decision.
	Price float64 `db:"price" json:"price"`
	Stop  float64 `db:"stop" json:"stop"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsInitial reports whether the signal is the first directional decision
func (s Signal) IsInitial() bool {
	return s.From == RegimeNone
}

// String returns a short human readable description of the signal
func (s Signal) String() string {
	if s.IsInitial() {
		return fmt.Sprintf("[%s] %s at %.8g (initial %s trend)", s.Pair, s.Direction, s.Price, s.To)
	}
	return fmt.Sprintf("[%s] %s at %.8g (stop %.8g breached, %s -> %s)",
		s.Pair, s.Direction, s.Price, s.Stop, s.From, s.To)
}

// SignalStorage defines the interface for the signal journal
type SignalStorage interface {
	// CreateSignal stores a new signal and assigns its ID
	CreateSignal(signal *Signal) error

	// Signals retrieves signals matching all the provided filters, oldest first
	Signals(filters ...SignalFilter) ([]*Signal, error)
}

// WithSignalPair keeps signals of the given pair
func WithSignalPair(pair string) SignalFilter {
	return func(signal Signal) bool {
		return signal.Pair == pair
	}
}

// WithDirection keeps signals advising the given direction
func WithDirection(direction Direction) SignalFilter {
	return func(signal Signal) bool {
		return signal.Direction == direction
	}
}

// WithTimeBetween keeps signals with start <= time <= end
func WithTimeBetween(start, end time.Time) SignalFilter {
	return func(signal Signal) bool {
		return !signal.Time.Before(start) && !signal.Time.After(end)
	}
}

// WithCreatedAfter keeps signals emitted at or after t
func WithCreatedAfter(t time.Time) SignalFilter {
	return func(signal Signal) bool {
		return !signal.CreatedAt.Before(t)
	}
}
