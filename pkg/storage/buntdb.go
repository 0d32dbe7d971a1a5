// Package storage journals emitted signals.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/tidwall/buntdb"
)

const timeIndex = "time_index"

// BuntStorage implements core.SignalStorage on top of BuntDB
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory journal
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file backed journal
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage opens the database and indexes signals by candle time.
// IDs continue after the highest ID already stored.
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.CreateIndex(timeIndex, "*", buntdb.IndexJSON("time"), buntdb.IndexJSON("id")); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &BuntStorage{db: db}
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, _ string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > storage.lastID {
				storage.lastID = id
			}
			return true
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to scan existing signals: %w", err)
	}

	return storage, nil
}

func (b *BuntStorage) nextID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// CreateSignal stores a new signal and assigns its ID
func (b *BuntStorage) CreateSignal(signal *core.Signal) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		signal.ID = b.nextID()
		content, err := json.Marshal(signal)
		if err != nil {
			return fmt.Errorf("failed to marshal signal: %w", err)
		}

		if _, _, err = tx.Set(strconv.FormatInt(signal.ID, 10), string(content), nil); err != nil {
			return fmt.Errorf("failed to store signal: %w", err)
		}
		return nil
	})
}

// Signals returns the stored signals matching every filter, oldest first
func (b *BuntStorage) Signals(filters ...core.SignalFilter) ([]*core.Signal, error) {
	signals := make([]*core.Signal, 0)

	var decodeErr error
	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(timeIndex, func(_, value string) bool {
			var signal core.Signal
			if err := json.Unmarshal([]byte(value), &signal); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal signal: %w", err)
				return false
			}

			for _, filter := range filters {
				if !filter(signal) {
					return true
				}
			}

			signals = append(signals, &signal)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over signals: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	return signals, nil
}

// Close closes the database
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
