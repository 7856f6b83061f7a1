package config

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/racemates/racemates-go/log"
	"github.com/racemates/racemates-go/version"
)

// Telemetry bundles the configured metric provider for shutdown on exit.
type Telemetry struct {
	ctx      context.Context
	provider *sdkmetric.MeterProvider
}

// SetupTelemetry installs a global meter provider exporting to stdout.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("racemates"),
			semconv.ServiceVersion(version.Version),
		))
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(30*time.Second))),
	)
	otel.SetMeterProvider(provider)
	return &Telemetry{ctx: ctx, provider: provider}, nil
}

func (t *Telemetry) Shutdown() {
	if err := t.provider.Shutdown(t.ctx); err != nil {
		log.Warn("error shutting down metric provider", log.ErrorField(err))
	}
}
