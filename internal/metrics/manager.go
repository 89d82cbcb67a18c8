package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/myrjola/nextlift/internal/recommend"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterRecommendations *prometheus.CounterVec
	CounterFlags           *prometheus.CounterVec
	CounterEntriesLogged   prometheus.Counter
	CounterPanics          prometheus.Counter

	// histograms
	HistRequestDuration        prometheus.Histogram
	HistRecommendationDuration prometheus.Histogram
}

// SetupPrometheus creates a registry with the build info, Go runtime and process collectors.
func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promRegistry
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("nextlift", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterRecommendations := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendations_total",
		Help:      "The total number of generated recommendations by training status",
	}, []string{"status"})
	counterFlags := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_flags_total",
		Help:      "The total number of flags attached to recommendations",
	}, []string{"flag"})
	counterEntriesLogged := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "entries_logged_total",
		Help:      "The total number of logged or imported workout entries",
	})
	counterPanics := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic_total",
		Help:      "The total number of recovered request panics",
	})

	histReqDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Total duration of requests in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	})
	histRecommendationDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "recommendation_duration_seconds",
		Help:      "Time spent generating a single recommendation in seconds",
		Buckets: []float64{
			0.000001, 0.0000025, 0.000005, 0.00001, 0.000025,
			0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.01,
		},
	})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterRecommendations:     counterRecommendations,
		CounterFlags:               counterFlags,
		CounterEntriesLogged:       counterEntriesLogged,
		CounterPanics:              counterPanics,
		HistRequestDuration:        histReqDuration,
		HistRecommendationDuration: histRecommendationDuration,
	}
}

// EntriesLogged counts n new workout entries.
func (m *Manager) EntriesLogged(n int) {
	m.CounterEntriesLogged.Add(float64(n))
}

// Recommended records the status, flags and duration of a generated recommendation.
func (m *Manager) Recommended(rec recommend.Recommendation, elapsed time.Duration) {
	m.CounterRecommendations.WithLabelValues(string(rec.TrainingStatus)).Inc()
	for _, f := range rec.Flags {
		m.CounterFlags.WithLabelValues(string(f)).Inc()
	}
	m.HistRecommendationDuration.Observe(elapsed.Seconds())
}
