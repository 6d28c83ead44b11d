package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Options configures OTLP export.
type Options struct {
	Endpoint    string // host:port of an OTLP gRPC collector
	ServiceName string
	Interval    time.Duration
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// endpoint returns the configured endpoint, falling back to the standard
// OTEL_EXPORTER_OTLP_* environment variables.
func (o Options) endpoint() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	if ep := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); ep != "" {
		return ep
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// Init installs global meter and tracer providers exporting over OTLP gRPC.
// Without an endpoint it leaves the no-op providers in place.
func Init(ctx context.Context, opts Options, logger *slog.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := opts.endpoint()
	if endpoint == "" {
		logger.Debug("telemetry disabled, no OTLP endpoint")
		return noop, nil
	}
	service := opts.ServiceName
	if service == "" {
		service = "lakerisk"
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	res := resource.NewSchemaless(attribute.String("service.name", service))

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dial := grpc.WithTransportCredentials(insecure.NewCredentials())
	metricExp, err := otlpmetricgrpc.New(initCtx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithDialOption(dial),
	)
	if err != nil {
		return noop, err
	}
	traceExp, err := otlptracegrpc.New(initCtx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(dial),
	)
	if err != nil {
		_ = metricExp.Shutdown(ctx)
		return noop, err
	}

	reader := sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(interval))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp), sdktrace.WithResource(res))
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	logger.Info("telemetry initialized", "endpoint", endpoint, "service", service)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// Flush runs shutdown with a bounded timeout.
func Flush(ctx context.Context, shutdown ShutdownFunc) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
