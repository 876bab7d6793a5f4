// Package metrics exposes bot activity as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "navarb"

// Recorder holds the bot's collectors.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleErrors   *prometheus.CounterVec
	decisions     *prometheus.CounterVec
	trades        *prometheus.CounterVec
	navUSD        prometheus.Gauge
	indexPriceUSD prometheus.Gauge
	premiumPct    prometheus.Gauge
	cycleDuration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)

	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Poll cycles by outcome",
			},
			[]string{"outcome"},
		),
		cycleErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycle_errors_total",
				Help:      "Skipped cycles by error kind",
			},
			[]string{"kind"},
		),
		decisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Decisions by kind and reason",
			},
			[]string{"decision", "reason"},
		),
		trades: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Executed trades by direction and final status",
			},
			[]string{"direction", "status"},
		),
		navUSD: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nav_usd",
			Help:      "Last computed NAV per index token",
		}),
		indexPriceUSD: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_price_usd",
			Help:      "Last quoted index token price",
		}),
		premiumPct: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "premium_pct",
			Help:      "Last premium (positive) or discount (negative) to NAV in percent",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one poll cycle",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
	}
}

// RecordCycle counts a finished cycle.
func (r *Recorder) RecordCycle(outcome string, took time.Duration) {
	r.cycles.WithLabelValues(outcome).Inc()
	r.cycleDuration.Observe(took.Seconds())
}

// RecordError counts a cycle skipped because of an error of kind.
func (r *Recorder) RecordError(kind string) {
	r.cycleErrors.WithLabelValues(kind).Inc()
}

// RecordDecision counts a decision.
func (r *Recorder) RecordDecision(decision, reason string) {
	r.decisions.WithLabelValues(decision, reason).Inc()
}

// RecordTrade counts a submitted trade.
func (r *Recorder) RecordTrade(direction, status string) {
	r.trades.WithLabelValues(direction, status).Inc()
}

// RecordValuation sets the price gauges.
func (r *Recorder) RecordValuation(nav, indexPrice, premiumPct decimal.Decimal) {
	r.navUSD.Set(nav.InexactFloat64())
	r.indexPriceUSD.Set(indexPrice.InexactFloat64())
	r.premiumPct.Set(premiumPct.InexactFloat64())
}
