package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/exchange"
	"github.com/raykavin/atradx/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wave produces a slow sine so the strategy flips trend several times
func wave(pair string, n int) []core.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, 0, n)
	prev := 100.0
	for i := 0; i < n; i++ {
		price := 100 + 20*math.Sin(float64(i)/15)
		candles = append(candles, core.Candle{
			Pair:   pair,
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   prev,
			Close:  price,
			High:   math.Max(prev, price) + 0.5,
			Low:    math.Min(prev, price) - 0.5,
			Volume: 1,
		})
		prev = price
	}
	return candles
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, period, returnsDir, noProgress = "", "", "", false
	resultsFile, seed = "", 0

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBacktestCommand(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "btc.csv")
	require.NoError(t, exchange.WriteCandles(csvFile, wave("BTCUSDT", 400), 6))

	dbFile := filepath.Join(dir, "signals.db")
	metricsFile := filepath.Join(dir, "atradx.prom")
	configFile := filepath.Join(dir, "atradx.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(fmt.Sprintf(`
strategy:
  atr_period: 10
  adx_period: 10
feed:
  timeframe: 1h
  pairs:
    - pair: BTCUSDT
      file: %s
      timeframe: 1h
storage:
  driver: buntdb
  path: %s
metrics:
  enabled: true
  file: %s
report:
  bootstrap_samples: 50
log:
  level: error
`, csvFile, dbFile, metricsFile)), 0o600))

	returns := filepath.Join(dir, "returns")
	out, err := runCommand(t, "backtest", "-c", configFile, "--no-progress", "-r", returns)
	require.NoError(t, err)

	assert.Contains(t, out, "SIGNALS")
	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "BTCUSDT")

	assert.FileExists(t, metricsFile)
	assert.FileExists(t, filepath.Join(returns, "BTCUSDT.csv"))

	journal, err := storage.FromFile(dbFile)
	require.NoError(t, err)
	defer journal.Close()

	signals, err := journal.Signals()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(signals), 2)
	assert.True(t, signals[0].IsInitial())
	for i := 1; i < len(signals); i++ {
		assert.NotEqual(t, signals[i-1].Direction, signals[i].Direction)
		assert.False(t, signals[i].Time.Before(signals[i-1].Time))
	}
}

// section returns the report text between two headers
func section(t *testing.T, out, from, to string) string {
	t.Helper()
	start := strings.Index(out, from)
	require.GreaterOrEqual(t, start, 0, from)
	end := strings.Index(out[start:], to)
	require.Greater(t, end, 0, to)
	return out[start : start+end]
}

func TestBacktestCommand_ReusedJournal(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "btc.csv")
	require.NoError(t, exchange.WriteCandles(csvFile, wave("BTCUSDT", 400), 6))

	dbFile := filepath.Join(dir, "signals.db")
	configFile := filepath.Join(dir, "atradx.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(fmt.Sprintf(`
strategy:
  atr_period: 10
  adx_period: 10
feed:
  timeframe: 1h
  pairs:
    - pair: BTCUSDT
      file: %s
storage:
  driver: buntdb
  path: %s
report:
  bootstrap_samples: 50
log:
  level: error
`, csvFile, dbFile)), 0o600))

	returns := filepath.Join(dir, "returns")
	returnsFile := filepath.Join(returns, "BTCUSDT.csv")

	first, err := runCommand(t, "backtest", "-c", configFile, "--no-progress", "-r", returns)
	require.NoError(t, err)
	firstReturns, err := os.ReadFile(returnsFile)
	require.NoError(t, err)
	firstCount := len(journalSignals(t, dbFile))
	require.GreaterOrEqual(t, firstCount, 2)

	second, err := runCommand(t, "backtest", "-c", configFile, "--no-progress", "-r", returns)
	require.NoError(t, err)
	secondReturns, err := os.ReadFile(returnsFile)
	require.NoError(t, err)

	const summary, histogram = "------ SUMMARY -------", "------ RETURN"
	assert.Equal(t, section(t, first, summary, histogram), section(t, second, summary, histogram))
	assert.Equal(t, string(firstReturns), string(secondReturns))

	// both runs stay in the journal
	assert.Len(t, journalSignals(t, dbFile), 2*firstCount)
}

func journalSignals(t *testing.T, file string) []*core.Signal {
	t.Helper()
	journal, err := storage.FromFile(file)
	require.NoError(t, err)
	defer journal.Close()

	signals, err := journal.Signals()
	require.NoError(t, err)
	return signals
}

func TestOptimizeCommand(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "btc.csv")
	require.NoError(t, exchange.WriteCandles(csvFile, wave("BTCUSDT", 300), 6))

	configFile := filepath.Join(dir, "atradx.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(fmt.Sprintf(`
feed:
  timeframe: 1h
  pairs:
    - pair: BTCUSDT
      file: %s
log:
  level: error
`, csvFile)), 0o600))

	output := filepath.Join(dir, "results.csv")
	out, err := runCommand(t, "optimize", "-c", configFile, "-n", "4", "-j", "2", "--seed", "3",
		"-m", "profit", "-t", "2", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Top 2 results by profit")
	assert.FileExists(t, output)

	_, err = runCommand(t, "optimize", "-c", configFile, "-m", "sharpe")
	require.Error(t, err)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atradx.yaml")

	out, err := runCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = runCommand(t, "config", "init", path)
	require.Error(t, err)

	out, err = runCommand(t, "config", "show", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "atr_period:           14")
	assert.Contains(t, out, "warmup_period:        28")
}
