// Package exchange provides candle sources for replaying history through
// the strategy controllers.
package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownPair      = errors.New("unknown pair")

	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// PairFeed describes the CSV file holding the candles of one pair
type PairFeed struct {
	Pair      string
	File      string
	Timeframe string
}

// CSVFeed holds candles loaded from CSV files, resampled to one timeframe
type CSVFeed struct {
	Timeframe string
	Feeds     map[string]PairFeed
	Candles   map[string][]core.Candle
}

// NewCSVFeed loads every feed and resamples it to the target timeframe
func NewCSVFeed(targetTimeframe string, feeds ...PairFeed) (*CSVFeed, error) {
	feed := &CSVFeed{
		Timeframe: targetTimeframe,
		Feeds:     make(map[string]PairFeed),
		Candles:   make(map[string][]core.Candle),
	}

	for _, pairFeed := range feeds {
		candles, err := ReadCandles(pairFeed.File, pairFeed.Pair)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", pairFeed.File, err)
		}

		resampled, err := Resample(candles, pairFeed.Timeframe, targetTimeframe)
		if err != nil {
			return nil, fmt.Errorf("resampling %s: %w", pairFeed.Pair, err)
		}

		feed.Feeds[pairFeed.Pair] = pairFeed
		feed.Candles[pairFeed.Pair] = resampled
	}

	return feed, nil
}

// ReadCandles parses a CSV file. The header row is optional; without it
// the columns are time, open, close, low, high, volume.
func ReadCandles(file, pair string) ([]core.Candle, error) {
	csvFile, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	lines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInsufficientData, file)
	}

	headerMap, hasHeader := parseHeaders(lines[0])
	if hasHeader {
		lines = lines[1:]
	}

	candles := make([]core.Candle, 0, len(lines))
	for i, line := range lines {
		candle, err := parseCandle(line, headerMap, pair)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		candles = append(candles, candle)
	}

	slices.SortStableFunc(candles, func(a, b core.Candle) int {
		return a.Time.Compare(b.Time)
	})

	return candles, nil
}

// WriteCandles stores candles in the headerless column order read by ReadCandles
func WriteCandles(file string, candles []core.Candle, precision int) error {
	csvFile, err := os.Create(file)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	writer := csv.NewWriter(csvFile)
	for _, candle := range candles {
		if err := writer.Write(candle.ToSlice(precision)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseHeaders(headers []string) (map[string]int, bool) {
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, false
	}

	headerMap := make(map[string]int, len(headers))
	for index, header := range headers {
		headerMap[header] = index
	}
	return headerMap, true
}

func parseCandle(line []string, headerMap map[string]int, pair string) (core.Candle, error) {
	column := func(name string) (string, error) {
		index, ok := headerMap[name]
		if !ok || index >= len(line) {
			return "", fmt.Errorf("missing column %q", name)
		}
		return line[index], nil
	}

	raw, err := column("time")
	if err != nil {
		return core.Candle{}, err
	}
	timestamp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Pair:      pair,
		Time:      time.Unix(timestamp, 0).UTC(),
		UpdatedAt: time.Unix(timestamp, 0).UTC(),
		Complete:  true,
	}

	fields := []struct {
		name   string
		target *float64
	}{
		{"open", &candle.Open},
		{"close", &candle.Close},
		{"low", &candle.Low},
		{"high", &candle.High},
		{"volume", &candle.Volume},
	}
	for _, f := range fields {
		raw, err := column(f.name)
		if err != nil {
			return core.Candle{}, err
		}
		if *f.target, err = strconv.ParseFloat(raw, 64); err != nil {
			return core.Candle{}, fmt.Errorf("column %s: %w", f.name, err)
		}
	}

	return candle, nil
}

// Resample aggregates candles of sourceTimeframe into targetTimeframe
// buckets aligned on UTC boundaries. Incomplete buckets at the start and
// at the end of the series are dropped.
func Resample(candles []core.Candle, sourceTimeframe, targetTimeframe string) ([]core.Candle, error) {
	if sourceTimeframe == targetTimeframe {
		return candles, nil
	}

	source, err := str2duration.ParseDuration(sourceTimeframe)
	if err != nil {
		return nil, err
	}
	target, err := str2duration.ParseDuration(targetTimeframe)
	if err != nil {
		return nil, err
	}
	if target < source || target%source != 0 {
		return nil, fmt.Errorf("cannot resample %s into %s", sourceTimeframe, targetTimeframe)
	}

	perBucket := int(target / source)
	groups := lo.GroupBy(candles, func(c core.Candle) time.Time {
		return c.Time.Truncate(target)
	})

	keys := lo.Keys(groups)
	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })

	resampled := make([]core.Candle, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		if len(group) != perBucket {
			continue
		}

		bucket := group[0]
		bucket.Time = key
		for _, c := range group[1:] {
			bucket.High = math.Max(bucket.High, c.High)
			bucket.Low = math.Min(bucket.Low, c.Low)
			bucket.Close = c.Close
			bucket.Volume += c.Volume
			bucket.UpdatedAt = c.UpdatedAt
		}
		bucket.Complete = true
		resampled = append(resampled, bucket)
	}

	return resampled, nil
}

// Limit keeps only the candles of the last duration of each pair
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for pair, candles := range c.Candles {
		if len(candles) == 0 {
			continue
		}

		start := candles[len(candles)-1].Time.Add(-duration)
		c.Candles[pair] = lo.Filter(candles, func(candle core.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// CandlesByPeriod returns the candles of pair with start <= time <= end
func (c *CSVFeed) CandlesByPeriod(_ context.Context, pair string, start, end time.Time) ([]core.Candle, error) {
	candles, ok := c.Candles[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPair, pair)
	}

	return lo.Filter(candles, func(candle core.Candle, _ int) bool {
		return !candle.Time.Before(start) && !candle.Time.After(end)
	}), nil
}

// Len returns the total number of candles across pairs
func (c *CSVFeed) Len() int {
	return lo.SumBy(lo.Values(c.Candles), func(candles []core.Candle) int { return len(candles) })
}

// Replay sends every candle to the subscribers in chronological order,
// pairs interleaved by time then name. It stops when ctx is done.
func (c *CSVFeed) Replay(ctx context.Context, subscribers ...core.CandleSubscriber) error {
	all := lo.Flatten(lo.Values(c.Candles))
	slices.SortStableFunc(all, func(a, b core.Candle) int {
		if cmp := a.Time.Compare(b.Time); cmp != 0 {
			return cmp
		}
		if a.Pair < b.Pair {
			return -1
		}
		if a.Pair > b.Pair {
			return 1
		}
		return 0
	})

	for _, candle := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, subscriber := range subscribers {
			subscriber.OnCandle(candle)
		}
	}
	return nil
}

// CandlesSubscription streams the candles of a pair over a channel
func (c *CSVFeed) CandlesSubscription(ctx context.Context, pair string) (chan core.Candle, chan error) {
	ccandle := make(chan core.Candle)
	cerr := make(chan error, 1)

	go func() {
		defer close(ccandle)
		defer close(cerr)

		candles, ok := c.Candles[pair]
		if !ok {
			cerr <- fmt.Errorf("%w: %s", ErrUnknownPair, pair)
			return
		}

		for _, candle := range candles {
			select {
			case ccandle <- candle:
			case <-ctx.Done():
				cerr <- ctx.Err()
				return
			}
		}
	}()

	return ccandle, cerr
}
