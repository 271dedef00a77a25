// Package telemetry wires slog and the OpenTelemetry SDK for the storefront.
//
// SetupTracer exports spans over OTLP/gRPC. The otelhttp server handler and
// backend transport pick the global provider up, so trace ids flow from the
// browser request through every backend call.
//
//	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerOptions{ServiceName: "storefront"})
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc must be called before the process exits to flush any
// buffered spans and close the exporter connection cleanly.
type ShutdownFunc func(ctx context.Context) error

// TracerOptions configures SetupTracer. The zero value exports to
// localhost:4317 and samples every trace.
type TracerOptions struct {
	// ServiceName identifies this process in Tempo / Grafana.
	ServiceName string

	// Endpoint is the collector host:port. An http:// or https:// prefix is
	// tolerated so OTEL_EXPORTER_OTLP_ENDPOINT can be passed through as is.
	Endpoint string

	// Environment is stamped as deployment.environment (default "local").
	Environment string

	// SampleRatio below 1 switches to parent-based ratio sampling.
	// Zero or anything at or above 1 samples every trace.
	SampleRatio float64
}

// SetupTracer initialises the global OpenTelemetry TracerProvider and
// TextMapPropagator.
//
// Spans are batched and exported over an insecure gRPC connection. The
// returned ShutdownFunc flushes pending spans and closes that connection.
// Errors are returned before any global state is touched, so the caller
// can log and keep serving without tracing.
func SetupTracer(ctx context.Context, opts TracerOptions) (ShutdownFunc, error) {
	endpoint := stripScheme(opts.Endpoint)
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
	}

	env := opts.Environment
	if env == "" {
		env = "local"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(opts.ServiceName),
			semconv.DeploymentEnvironment(env),
		),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(opts.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		return conn.Close()
	}

	return shutdown, nil
}

// samplerFor picks the sampler for a configured ratio. Ratio sampling is
// wrapped in ParentBased so a request that arrived sampled stays sampled
// across every backend call it makes.
func samplerFor(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// stripScheme removes "http://" or "https://" prefixes so the raw host:port
// string can be used directly with grpc.NewClient.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if strings.HasPrefix(endpoint, prefix) {
			return strings.TrimPrefix(endpoint, prefix)
		}
	}
	return endpoint
}
