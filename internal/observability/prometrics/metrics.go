package prometrics

import (
	"sync"

	"github.com/greenmart/storefront/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type spec struct {
	help    string
	labels  []string
	buckets []float64
}

// Instrument definitions for every MetricKey the application uses.
var specs = map[observability.MetricKey]spec{
	observability.MUsecaseRequests: {
		help:   "Total number of use case invocations.",
		labels: []string{"use_case", "outcome"},
	},
	observability.MUsecaseDuration: {
		help:    "Duration of use case execution in seconds.",
		labels:  []string{"use_case"},
		buckets: prometheus.DefBuckets,
	},
	observability.MHTTPRequests: {
		help:   "Total number of HTTP requests handled.",
		labels: []string{"method", "route", "status"},
	},
	observability.MHTTPRequestDuration: {
		help:    "Duration of HTTP request handling in seconds.",
		labels:  []string{"method", "route"},
		buckets: prometheus.DefBuckets,
	},
	observability.MStockAdjustments: {
		help:   "Total number of stock adjustments by mode and outcome.",
		labels: []string{"mode", "outcome"},
	},
	observability.MNotifyFailures: {
		help:   "Count of best-effort notification failures.",
		labels: []string{"kind"},
	},
}

type metrics struct {
	registerer prometheus.Registerer
	namespace  string

	mu         sync.Mutex
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

// New returns a Metrics provider backed by the given prometheus registerer.
func New(registerer prometheus.Registerer, namespace string) observability.Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &metrics{
		registerer: registerer,
		namespace:  namespace,
		counters:   make(map[observability.MetricKey]observability.Counter),
		histograms: make(map[observability.MetricKey]observability.Histogram),
	}
}

func (m *metrics) Counter(name observability.MetricKey) observability.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}
	s, ok := specs[name]
	if !ok {
		return observability.NopMetrics().Counter(name)
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: string(name), Help: s.help,
	}, s.labels)
	m.registerer.MustRegister(cv)
	c := &counter{v: cv}
	m.counters[name] = c
	return c
}

func (m *metrics) Histogram(name observability.MetricKey) observability.Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}
	s, ok := specs[name]
	if !ok {
		return observability.NopMetrics().Histogram(name)
	}
	buckets := s.buckets
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: string(name), Help: s.help, Buckets: buckets,
	}, s.labels)
	m.registerer.MustRegister(hv)
	h := &histogram{v: hv}
	m.histograms[name] = h
	return h
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}
