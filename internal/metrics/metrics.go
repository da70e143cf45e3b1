package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rationbook",
			Name:      "submissions_total",
			Help:      "Count of week submissions by result.",
		},
		[]string{"result"},
	)

	rowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rationbook",
			Name:      "rows_written_total",
			Help:      "Count of booking rows written, split by update vs append.",
		},
		[]string{"kind"},
	)

	namelistRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rationbook",
			Name:      "namelist_requests_total",
			Help:      "Count of namelist lookups by response source.",
		},
		[]string{"source"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rationbook",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(submissions, rowsWritten, namelistRequests, requestDuration)
	})
}

func IncSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

func AddRowsWritten(kind string, n int) {
	rowsWritten.WithLabelValues(kind).Add(float64(n))
}

func IncNamelistRequest(source string) {
	namelistRequests.WithLabelValues(source).Inc()
}

func ObserveRequest(endpoint string, d time.Duration) {
	requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}
