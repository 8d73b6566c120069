package prometrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/greenmart/storefront/internal/observability"
)

// The HTTP middleware records both RED instruments on every request; the
// label sets it passes must match the instrument definitions exactly or
// the underlying vector panics on the cardinality mismatch.
func TestHTTPInstrumentsAcceptMiddlewareLabels(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	assert.NotPanics(t, func() {
		m.Counter(observability.MHTTPRequests).Add(1,
			observability.L("method", "GET"),
			observability.L("route", "/products"),
			observability.L("status", "200"),
		)
		m.Histogram(observability.MHTTPRequestDuration).Observe(0.1,
			observability.L("method", "GET"),
			observability.L("route", "/products"),
		)
	})
}

func TestUsecaseInstrumentsAcceptServiceLabels(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	assert.NotPanics(t, func() {
		m.Counter(observability.MUsecaseRequests).Add(1,
			observability.L("use_case", "order.create"),
			observability.L("outcome", "success"),
		)
		m.Histogram(observability.MUsecaseDuration).Observe(0.05,
			observability.L("use_case", "order.create"),
		)
		m.Counter(observability.MStockAdjustments).Add(1,
			observability.L("mode", "increase"),
			observability.L("outcome", "success"),
		)
		m.Counter(observability.MNotifyFailures).Add(1,
			observability.L("kind", "order_confirmation"),
		)
	})
}

func TestUnknownMetricKeyFallsBackToNop(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	assert.NotPanics(t, func() {
		m.Counter(observability.MetricKey("no_such_metric")).Add(1)
		m.Histogram(observability.MetricKey("no_such_metric")).Observe(1)
	})
}

func TestInstrumentsAreCachedPerKey(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	// MustRegister would panic on a duplicate registration, so repeated
	// lookups have to return the cached instrument.
	assert.NotPanics(t, func() {
		for i := 0; i < 3; i++ {
			m.Counter(observability.MHTTPRequests)
			m.Histogram(observability.MHTTPRequestDuration)
		}
	})
}
