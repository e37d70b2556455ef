package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Admissions    prometheus.Counter
	AdmissionWait prometheus.Histogram
	Cancellations prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Admissions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "slidegate_admissions_total",
				Help: "Total admissions granted by the gate",
			},
		),
		AdmissionWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "slidegate_admission_wait_seconds",
				Help:    "Time callers spent blocked waiting for admission",
				Buckets: prometheus.DefBuckets,
			},
		),
		Cancellations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "slidegate_admission_cancelled_total",
				Help: "Admissions abandoned because the caller was cancelled",
			},
		),
	}

	reg.MustRegister(m.Admissions, m.AdmissionWait, m.Cancellations)
	return m
}

// ObserveAdmit matches the gate's admit hook signature.
func (m *Metrics) ObserveAdmit(wait time.Duration) {
	m.Admissions.Inc()
	m.AdmissionWait.Observe(wait.Seconds())
}

// ObserveCancel matches the gate's cancel hook signature.
func (m *Metrics) ObserveCancel() {
	m.Cancellations.Inc()
}
