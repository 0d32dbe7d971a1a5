package storage

import (
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
)

// Journal is a signal emitter that records every signal in a storage.
// Write failures are logged and do not stop the stream.
type Journal struct {
	storage core.SignalStorage
	log     logger.Logger
}

// NewJournal creates a journal writing to storage
func NewJournal(storage core.SignalStorage, log logger.Logger) *Journal {
	if log == nil {
		log = logger.Nop()
	}
	return &Journal{storage: storage, log: log}
}

// Notify stores a copy of the signal
func (j *Journal) Notify(signal core.Signal) {
	if err := j.storage.CreateSignal(&signal); err != nil {
		j.log.WithError(err).WithField("pair", signal.Pair).Error("failed to journal signal")
	}
}
