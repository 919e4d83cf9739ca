package finance

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the business counters exposed at /finance/metrics.
type Metrics struct {
	registry   *prometheus.Registry
	created    prometheus.Counter
	updated    prometheus.Counter
	deleted    prometheus.Counter
	amount     *prometheus.CounterVec
	processing *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_created_total",
			Help: "Total number of transactions created",
		}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_updated_total",
			Help: "Total number of transactions updated",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		}),
		amount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_transaction_amount_total",
			Help: "Sum of created transaction amounts",
		}, []string{"type"}),
		processing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fintrack_transaction_processing_seconds",
			Help:    "Time taken to process a transaction write",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	m.registry.MustRegister(
		m.created, m.updated, m.deleted, m.amount, m.processing,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) recordCreated(t Transaction) {
	m.created.Inc()
	m.amount.WithLabelValues(string(t.Type)).Add(t.Amount.InexactFloat64())
}

func (m *Metrics) recordUpdated() { m.updated.Inc() }

func (m *Metrics) recordDeleted() { m.deleted.Inc() }

// observe returns a func that records the elapsed time for operation.
func (m *Metrics) observe(operation string) func() {
	start := time.Now()
	return func() {
		m.processing.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
