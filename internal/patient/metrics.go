package patient

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the patient subsystem.
type Metrics struct {
	IngestedTotal    prometheus.Counter
	RejectedTotal    *prometheus.CounterVec
	StoredRecords    prometheus.Gauge
	ConfirmsTotal    *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	ResetsTotal      prometheus.Counter
}

// NewMetrics registers and returns patient metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triageboard_records_ingested_total",
			Help: "Total patient records accepted by ingest.",
		}),
		RejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triageboard_ingest_rejected_total",
			Help: "Total ingest bodies rejected by reason.",
		}, []string{"reason"}),
		StoredRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "triageboard_store_records",
			Help: "Number of records currently held in the store.",
		}),
		ConfirmsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triageboard_confirmations_total",
			Help: "Total confirmations by delivery outcome.",
		}, []string{"outcome"}),
		DeliveryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triageboard_confirmation_delivery_seconds",
			Help:    "Duration of confirmation webhook deliveries in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"outcome"}),
		ResetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triageboard_store_resets_total",
			Help: "Total store resets.",
		}),
	}

	reg.MustRegister(
		m.IngestedTotal,
		m.RejectedTotal,
		m.StoredRecords,
		m.ConfirmsTotal,
		m.DeliveryDuration,
		m.ResetsTotal,
	)

	return m
}

// Hooks returns Service hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnIngest: func(storeSize int) {
			m.IngestedTotal.Inc()
			m.StoredRecords.Set(float64(storeSize))
		},
		OnReject: func(reason string) {
			m.RejectedTotal.WithLabelValues(reason).Inc()
		},
		OnConfirm: func(o Outcome) {
			m.ConfirmsTotal.WithLabelValues(string(o.Status)).Inc()
			if o.Status != DeliverySkipped {
				m.DeliveryDuration.WithLabelValues(string(o.Status)).Observe(o.Duration.Seconds())
			}
		},
		OnReset: func() {
			m.ResetsTotal.Inc()
			m.StoredRecords.Set(0)
		},
	}
}
