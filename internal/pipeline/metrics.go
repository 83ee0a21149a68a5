package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report pipeline activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	tasks     *prometheus.CounterVec
	attempts  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cacheHits *prometheus.CounterVec
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors that are already registered under the same name are reused, so
// several pipelines may share one registry. Any other registration error
// panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codecoach",
				Subsystem: "pipeline",
				Name:      "tasks_total",
				Help:      "Pipeline invocations by kind and outcome class.",
			},
			[]string{"kind", "outcome"},
		),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codecoach",
				Subsystem: "pipeline",
				Name:      "attempts_total",
				Help:      "Model calls issued, including retries.",
			},
			[]string{"kind"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codecoach",
				Subsystem: "pipeline",
				Name:      "retries_total",
				Help:      "Model calls that failed transiently and were retried.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "codecoach",
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Wall time of a pipeline invocation.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"kind"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "codecoach",
				Subsystem: "pipeline",
				Name:      "cache_hits_total",
				Help:      "Invocations served from the result cache.",
			},
			[]string{"kind"},
		),
	}

	m.tasks = registerCounterVec(reg, m.tasks)
	m.attempts = registerCounterVec(reg, m.attempts)
	m.retries = registerCounterVec(reg, m.retries)
	m.cacheHits = registerCounterVec(reg, m.cacheHits)
	if err := reg.Register(m.duration); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		m.duration = already.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		return already.ExistingCollector.(*prometheus.CounterVec)
	}
	return c
}

// ObserveTask records the outcome and duration of one invocation.
func (m *Metrics) ObserveTask(kind Kind, class Class, d time.Duration) {
	if m == nil {
		return
	}
	outcome := string(class)
	if class == ClassNone {
		outcome = OutcomeOK
	}
	m.tasks.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// AddAttempts counts model calls made for one invocation.
func (m *Metrics) AddAttempts(kind Kind, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attempts.WithLabelValues(string(kind)).Add(float64(n))
}

// IncRetry counts one retried call.
func (m *Metrics) IncRetry(kind Kind) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(string(kind)).Inc()
}

// IncCacheHit counts one cache hit.
func (m *Metrics) IncCacheHit(kind Kind) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(string(kind)).Inc()
}
