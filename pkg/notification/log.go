package notification

import (
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
)

// Log writes every signal to a logger at info level
type Log struct {
	log logger.Logger
}

// NewLog creates a logging emitter
func NewLog(log logger.Logger) *Log {
	if log == nil {
		log = logger.Nop()
	}
	return &Log{log: log}
}

// Notify logs the signal with its fields
func (l *Log) Notify(signal core.Signal) {
	l.log.WithFields(map[string]any{
		"pair":      signal.Pair,
		"direction": signal.Direction,
		"from":      signal.From,
		"to":        signal.To,
		"price":     signal.Price,
		"stop":      signal.Stop,
		"time":      signal.Time,
	}).Info(signal.String())
}
