package storage

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLStorage(t *testing.T) *SQLStorage {
	t.Helper()

	// a single connection keeps every query on the same in-memory database
	repository, err := FromSQL(sqlite.Open(":memory:"), Config{MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func TestSQLStorage(t *testing.T) {
	repository := newSQLStorage(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	first := newSignal("ETHUSDT", core.DirectionShort, start.Add(2*time.Hour))
	require.NoError(t, repository.CreateSignal(first))
	require.NoError(t, repository.CreateSignal(newSignal("BTCUSDT", core.DirectionLong, start)))
	require.NoError(t, repository.CreateSignal(newSignal("BTCUSDT", core.DirectionShort, start.Add(time.Hour))))
	assert.Equal(t, int64(1), first.ID)

	t.Run("all ordered by time", func(t *testing.T) {
		signals, err := repository.Signals()
		require.NoError(t, err)
		require.Len(t, signals, 3)
		assert.Equal(t, int64(2), signals[0].ID)
		assert.Equal(t, int64(3), signals[1].ID)
		assert.Equal(t, int64(1), signals[2].ID)
		assert.Equal(t, core.RegimeBear, signals[2].To)
	})

	t.Run("filters", func(t *testing.T) {
		signals, err := repository.Signals(core.WithSignalPair("BTCUSDT"), core.WithDirection(core.DirectionShort))
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.True(t, start.Add(time.Hour).Equal(signals[0].Time))

		signals, err = repository.Signals(core.WithTimeBetween(start.Add(time.Hour), start.Add(2*time.Hour)))
		require.NoError(t, err)
		assert.Len(t, signals, 2)
	})

	t.Run("custom query", func(t *testing.T) {
		signals, err := repository.SignalsWithQuery(func(db *gorm.DB) *gorm.DB {
			return db.Where("pair = ?", "ETHUSDT")
		})
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Equal(t, int64(1), signals[0].ID)
	})
}

func TestSQLStorage_CreatedAfter(t *testing.T) {
	repository := newSQLStorage(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	old := newSignal("BTCUSDT", core.DirectionLong, at)
	old.CreatedAt = at
	require.NoError(t, repository.CreateSignal(old))

	recent := newSignal("BTCUSDT", core.DirectionLong, at)
	recent.CreatedAt = at.Add(time.Minute)
	require.NoError(t, repository.CreateSignal(recent))

	signals, err := repository.Signals(core.WithCreatedAfter(at.Add(time.Second)))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, recent.ID, signals[0].ID)
}
