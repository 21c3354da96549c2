package metrics

import (
	"ZoneWatch/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	zones       *prometheus.GaugeVec
	ordersTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New registers collectors on the default registry.
func New() *Recorder { return NewWithRegistry(prometheus.DefaultRegisterer) }

// NewWithRegistry registers collectors on reg; tests pass a private registry.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		zones: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zonewatch_zones",
				Help: "Zones found by the last analysis, by outcome",
			},
			[]string{"symbol", "interval", "outcome"},
		),
		ordersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zonewatch_orders_emitted_total",
				Help: "Total number of order records emitted by the monitor",
			},
			[]string{"symbol", "side"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zonewatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zonewatch_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zonewatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordZones sets the per-outcome zone gauges for one symbol/interval.
func (r *Recorder) RecordZones(symbol, interval string, s models.OutcomeSummary) {
	r.zones.WithLabelValues(symbol, interval, string(models.OutcomeFresh)).Set(float64(s.Fresh))
	r.zones.WithLabelValues(symbol, interval, string(models.OutcomeBroken)).Set(float64(s.Broken))
	r.zones.WithLabelValues(symbol, interval, string(models.OutcomeTargetMet)).Set(float64(s.TargetMet))
}

func (r *Recorder) RecordOrder(symbol string, side models.Side) {
	r.ordersTotal.WithLabelValues(symbol, string(side)).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
