package strategy

import "github.com/raykavin/atradx/pkg/core"

// DataframeManager keeps the bounded OHLCV history of one pair
type DataframeManager struct {
	dataframe *core.Dataframe
	limit     int
}

// NewDataframeManager creates a dataframe manager for a trading pair. A
// positive limit caps the number of candles kept in memory.
func NewDataframeManager(pair string, limit int) *DataframeManager {
	return &DataframeManager{
		dataframe: &core.Dataframe{Pair: pair},
		limit:     limit,
	}
}

// GetDataframe returns the current dataframe
func (dm *DataframeManager) GetDataframe() *core.Dataframe {
	return dm.dataframe
}

// UpdateDataFrame appends a closed candle and drops the oldest ones
// beyond the limit
func (dm *DataframeManager) UpdateDataFrame(candle core.Candle) {
	df := dm.dataframe
	df.Close = append(df.Close, candle.Close)
	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time

	if dm.limit > 0 && df.Len() > dm.limit {
		*df = df.Sample(dm.limit)
	}
}

// HasSufficientData checks if the dataframe has enough data based on the warmup period
func (dm *DataframeManager) HasSufficientData(warmupPeriod int) bool {
	return dm.dataframe.Len() >= warmupPeriod
}

// IsLateCandle reports whether a candle is not newer than the latest one
// in the dataframe
func (dm *DataframeManager) IsLateCandle(candle core.Candle) bool {
	size := dm.dataframe.Len()
	return size > 0 && !candle.Time.After(dm.dataframe.Time[size-1])
}
