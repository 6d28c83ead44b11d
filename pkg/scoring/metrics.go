package scoring

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type instruments struct {
	requests    metric.Int64Counter
	unavailable metric.Int64Counter
	duration    metric.Float64Histogram
}

// newInstruments binds to the global meter provider, which is a no-op until
// telemetry is initialized.
func newInstruments() instruments {
	meter := otel.Meter("lakerisk/scoring")
	requests, _ := meter.Int64Counter("lakerisk_scoring_requests_total",
		metric.WithDescription("Scoring requests by outcome"))
	unavailable, _ := meter.Int64Counter("lakerisk_model_unavailable_total",
		metric.WithDescription("Requests for a model variant that is not loaded"))
	duration, _ := meter.Float64Histogram("lakerisk_scoring_duration_seconds",
		metric.WithDescription("Scoring latency"), metric.WithUnit("s"))
	return instruments{requests: requests, unavailable: unavailable, duration: duration}
}
