// Package metrics records trading and ingestion counters with prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	orders       *prometheus.CounterVec
	sessions     *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	lastPrice    *prometheus.GaugeVec
}

// New creates a Recorder and registers it with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradereflex_orders_total",
				Help: "Orders processed by side and result",
			},
			[]string{"side", "result"},
		),
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradereflex_sessions_started_total",
				Help: "Replay sessions started or reset",
			},
			[]string{"symbol"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradereflex_bar_fetches_total",
				Help: "Bar series fetches by timeframe and result",
			},
			[]string{"timeframe", "result"},
		),
		fetchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradereflex_bar_fetch_duration_seconds",
				Help:    "Duration of bar series fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"timeframe"},
		),
		lastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradereflex_last_price",
				Help: "Latest tracked price per symbol",
			},
			[]string{"symbol"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.orders, r.sessions, r.fetches, r.fetchLatency, r.lastPrice)
	}
	return r
}

// Order counts one order; result is "filled" or the rejection reason.
func (r *Recorder) Order(side, result string) {
	if r == nil {
		return
	}
	r.orders.WithLabelValues(side, result).Inc()
}

func (r *Recorder) SessionStarted(symbol string) {
	if r == nil {
		return
	}
	r.sessions.WithLabelValues(symbol).Inc()
}

func (r *Recorder) Fetch(timeframe string, took time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetches.WithLabelValues(timeframe, result).Inc()
	r.fetchLatency.WithLabelValues(timeframe).Observe(took.Seconds())
}

func (r *Recorder) LastPrice(symbol string, price float64) {
	if r == nil {
		return
	}
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
