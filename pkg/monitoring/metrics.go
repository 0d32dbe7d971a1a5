// Package monitoring exposes strategy activity as Prometheus metrics.
package monitoring

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/strategy"
)

const namespace = "atradx"

// Metrics holds the collectors of one registry
type Metrics struct {
	registry *prometheus.Registry

	SignalsTotal *prometheus.CounterVec // labels: pair, direction
	CandlesTotal *prometheus.CounterVec // labels: pair
	ErrorsTotal  *prometheus.CounterVec // labels: type
	Regime       *prometheus.GaugeVec   // labels: pair; 1=bull, -1=bear, 0=none
	StopLevel    *prometheus.GaugeVec   // labels: pair
	LastPrice    *prometheus.GaugeVec   // labels: pair
}

// NewMetrics creates the collectors and registers them on a new registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Total number of emitted signals",
		}, []string{"pair", "direction"}),
		CandlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candles_total",
			Help:      "Total number of candles received",
		}, []string{"pair"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of candle processing errors",
		}, []string{"type"}),
		Regime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regime",
			Help:      "Current trend regime (1 bull, -1 bear, 0 none)",
		}, []string{"pair"}),
		StopLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stop_level",
			Help:      "Current trailing stop level",
		}, []string{"pair"}),
		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_price",
			Help:      "Close of the last received candle",
		}, []string{"pair"}),
	}

	m.registry.MustRegister(
		m.SignalsTotal,
		m.CandlesTotal,
		m.ErrorsTotal,
		m.Regime,
		m.StopLevel,
		m.LastPrice,
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteToFile writes the metrics in the text exposition format
func (m *Metrics) WriteToFile(file string) error {
	return prometheus.WriteToTextfile(file, m.registry)
}

// Notify implements trend.Emitter
func (m *Metrics) Notify(signal core.Signal) {
	m.SignalsTotal.WithLabelValues(signal.Pair, string(signal.Direction)).Inc()
	m.Regime.WithLabelValues(signal.Pair).Set(regimeValue(signal.To))
}

// OnCandle implements core.CandleSubscriber
func (m *Metrics) OnCandle(candle core.Candle) {
	m.CandlesTotal.WithLabelValues(candle.Pair).Inc()
	m.LastPrice.WithLabelValues(candle.Pair).Set(candle.Close)
}

// RecordError counts a processing error by kind
func (m *Metrics) RecordError(err error) {
	m.ErrorsTotal.WithLabelValues(errorType(err)).Inc()
}

// Update refreshes the regime and stop gauges from the runner state
func (m *Metrics) Update(status []strategy.PairStatus) {
	for _, s := range status {
		m.Regime.WithLabelValues(s.Pair).Set(regimeValue(s.Regime))
		m.StopLevel.WithLabelValues(s.Pair).Set(s.Stop)
	}
}

func regimeValue(regime core.Regime) float64 {
	switch regime {
	case core.RegimeBull:
		return 1
	case core.RegimeBear:
		return -1
	default:
		return 0
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidData):
		return "data"
	case errors.Is(err, core.ErrInvalidConfiguration):
		return "configuration"
	case errors.Is(err, core.ErrLateCandle):
		return "late_candle"
	default:
		return "other"
	}
}
