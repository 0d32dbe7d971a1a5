package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignal(pair string, direction core.Direction, at time.Time) *core.Signal {
	return &core.Signal{
		Pair:      pair,
		Time:      at,
		Direction: direction,
		From:      direction.Regime(),
		To:        direction.Regime(),
		Price:     100,
	}
}

func TestBuntStorage(t *testing.T) {
	repository, err := FromMemory()
	require.NoError(t, err)
	defer repository.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// inserted out of order on purpose
	require.NoError(t, repository.CreateSignal(newSignal("ETHUSDT", core.DirectionShort, start.Add(2*time.Hour))))
	require.NoError(t, repository.CreateSignal(newSignal("BTCUSDT", core.DirectionLong, start)))
	require.NoError(t, repository.CreateSignal(newSignal("BTCUSDT", core.DirectionShort, start.Add(time.Hour))))

	t.Run("all ordered by time", func(t *testing.T) {
		signals, err := repository.Signals()
		require.NoError(t, err)
		require.Len(t, signals, 3)
		assert.Equal(t, int64(2), signals[0].ID)
		assert.Equal(t, int64(3), signals[1].ID)
		assert.Equal(t, int64(1), signals[2].ID)
	})

	t.Run("filters", func(t *testing.T) {
		signals, err := repository.Signals(core.WithSignalPair("BTCUSDT"), core.WithDirection(core.DirectionShort))
		require.NoError(t, err)
		require.Len(t, signals, 1)
		assert.Equal(t, start.Add(time.Hour), signals[0].Time.UTC())

		signals, err = repository.Signals(core.WithTimeBetween(start.Add(time.Hour), start.Add(2*time.Hour)))
		require.NoError(t, err)
		assert.Len(t, signals, 2)
	})
}

func TestBuntStorageReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "signals.db")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repository, err := FromFile(file)
	require.NoError(t, err)
	require.NoError(t, repository.CreateSignal(newSignal("BTCUSDT", core.DirectionLong, start)))
	require.NoError(t, repository.Close())

	repository, err = FromFile(file)
	require.NoError(t, err)
	defer repository.Close()

	signal := newSignal("BTCUSDT", core.DirectionShort, start.Add(time.Hour))
	require.NoError(t, repository.CreateSignal(signal))
	assert.Equal(t, int64(2), signal.ID)

	signals, err := repository.Signals()
	require.NoError(t, err)
	assert.Len(t, signals, 2)
}

func TestJournal(t *testing.T) {
	repository, err := FromMemory()
	require.NoError(t, err)
	defer repository.Close()

	journal := NewJournal(repository, logger.Nop())
	journal.Notify(*newSignal("BTCUSDT", core.DirectionLong, time.Now().UTC()))

	signals, err := repository.Signals()
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, int64(1), signals[0].ID)
}
