package report

import (
	"io"
	"math"
	"sort"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// BootstrapInterval is a confidence interval estimated by resampling
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap estimates the confidence interval of measure over values by
// drawing samples resamples with replacement
func Bootstrap(values []float64, measure func([]float64) float64, samples int, confidence float64) BootstrapInterval {
	if len(values) == 0 || samples <= 0 {
		return BootstrapInterval{}
	}

	data := make([]float64, 0, samples)
	resample := make([]float64, len(values))
	for i := 0; i < samples; i++ {
		for j := range resample {
			resample[j] = lo.Sample(values)
		}
		data = append(data, measure(resample))
	}
	sort.Float64s(data)

	tail := 1 - confidence
	mean, stdDev := stat.MeanStdDev(data, nil)

	return BootstrapInterval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}

// Mean is the default bootstrap measure
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Payoff is a bootstrap measure: average gain over average loss
func Payoff(values []float64) float64 {
	wins := lo.Filter(values, func(v float64, _ int) bool { return v > 0 })
	losses := lo.Filter(values, func(v float64, _ int) bool { return v <= 0 })
	if len(wins) == 0 || len(losses) == 0 || lo.Sum(losses) == 0 {
		return 0
	}
	return (lo.Sum(wins) / float64(len(wins))) / math.Abs(lo.Sum(losses)/float64(len(losses)))
}

// ProfitFactor is a bootstrap measure: gross gains over gross losses
func ProfitFactor(values []float64) float64 {
	grossLoss := lo.SumBy(values, func(v float64) float64 { return math.Min(v, 0) })
	if grossLoss == 0 {
		return 0
	}
	return lo.SumBy(values, func(v float64) float64 { return math.Max(v, 0) }) / math.Abs(grossLoss)
}

// WriteHistogram plots the distribution of values in bins buckets
func WriteHistogram(w io.Writer, values []float64, bins int) error {
	if len(values) == 0 {
		return nil
	}
	return histogram.Fprint(w, histogram.Hist(bins, values), histogram.Linear(10))
}
