package observability

type telemetry struct {
	tracer  Tracer
	logger  Logger
	metrics Metrics
}

// NewTelemetry assembles an Observability from individual ports. Nil parts
// fall back to no-op implementations.
func NewTelemetry(tracer Tracer, logger Logger, metrics Metrics) Observability {
	if tracer == nil {
		tracer = NopTracer()
	}
	if logger == nil {
		logger = NopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &telemetry{tracer: tracer, logger: logger, metrics: metrics}
}

func (t *telemetry) Tracer() Tracer   { return t.tracer }
func (t *telemetry) Logger() Logger   { return t.logger }
func (t *telemetry) Metrics() Metrics { return t.metrics }
