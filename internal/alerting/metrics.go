package alerting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics alert cycle instrumentation
type Metrics struct {
	Cycles        *prometheus.CounterVec
	AlertsFired   prometheus.Counter
	Digests       *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec
}

// NewMetrics registers the alert metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_alert_cycles_total",
			Help: "Alert cycles run, by trigger and result",
		}, []string{"trigger", "result"}),
		AlertsFired: f.NewCounter(prometheus.CounterOpts{
			Name: "custody_alerts_fired_total",
			Help: "Events moved from pending to fired",
		}),
		Digests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_alert_digests_total",
			Help: "Digest dispatch outcomes, by e-mail status",
		}, []string{"status"}),
		CycleDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custody_alert_cycle_duration_seconds",
			Help:    "Duration of a full alert cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"trigger"}),
	}
}

// ObserveCycle records one finished cycle. Safe on a nil receiver.
func (m *Metrics) ObserveCycle(trigger Trigger, start time.Time, out *Outcome, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Cycles.WithLabelValues(string(trigger), result).Inc()
	m.CycleDuration.WithLabelValues(string(trigger)).Observe(time.Since(start).Seconds())
	if out == nil {
		return
	}
	m.AlertsFired.Add(float64(out.AlertsFired))
	if out.EmailStatus != EmailStatusNone {
		m.Digests.WithLabelValues(string(out.EmailStatus)).Inc()
	}
}
