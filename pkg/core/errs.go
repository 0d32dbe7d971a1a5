package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidData          = errors.New("invalid data")
	ErrLateCandle           = errors.New("late candle")
)

// ConfigurationError reports a rejected configuration field. It is returned
// before any candle is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfiguration) match
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// DataError reports a non-finite value in the inputs of an evaluation
type DataError struct {
	Field string
	Value float64
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s is %v", ErrInvalidData, e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalidData) match
func (e *DataError) Is(target error) bool {
	return target == ErrInvalidData
}
