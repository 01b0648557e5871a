package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/gauges for the booking and availability flows.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	refreshTotal     *prometheus.CounterVec
	snapshotAge      prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total booking submissions by outcome",
		}, []string{"outcome"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "availability",
			Name:      "feed_refresh_total",
			Help:      "Total availability feed refreshes by result",
		}, []string{"result"}),
		snapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "availability",
			Name:      "snapshot_age_seconds",
			Help:      "Age of the availability snapshot being served",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.refreshTotal, m.snapshotAge)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) SetSnapshotAge(seconds float64) {
	if m == nil {
		return
	}
	m.snapshotAge.Set(seconds)
}
