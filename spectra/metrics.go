package spectra

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the client collectors. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	refresh  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aurora_spectra_requests_total",
			Help: "Total number of requests sent to the Spectra API.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aurora_spectra_request_duration_seconds",
			Help:    "Duration of requests sent to the Spectra API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aurora_spectra_refresh_total",
			Help: "Session token refresh attempts by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.refresh} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe records one round trip, code 0 is a transport failure.
func (m *metrics) observe(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Refresh results.
const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshSkipped = "skipped"
)

func (m *metrics) refreshed(result string) {
	if m == nil {
		return
	}
	m.refresh.WithLabelValues(result).Inc()
}
