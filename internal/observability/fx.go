package observability

import (
	"github.com/smallbiznis/polarops/internal/observability/logger"
	"github.com/smallbiznis/polarops/internal/observability/metrics"
	"github.com/smallbiznis/polarops/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the service logger, the tracer and meter providers, and
// the HTTP metrics shared by the API and the scheduler binaries.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Split,
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(start),
)

// start forces the tracer provider to be built and installs the scheduler
// job metrics before any cron entry fires.
func start(_ *sdktrace.TracerProvider, cfg metrics.Config) {
	metrics.SchedulerWithConfig(cfg)
}

// Split derives the per-component settings from cfg.
func Split(cfg Config) (logger.Config, tracing.Config, metrics.Config) {
	debug := cfg.Debug()
	return logger.Config{
			ServiceName:         cfg.ServiceName,
			Environment:         cfg.Environment,
			Version:             cfg.Version,
			Level:               cfg.LogLevel,
			Format:              cfg.LogFormat,
			Debug:               debug,
			IncludeCaller:       true,
			IncludeStackOnError: debug,
		}, tracing.Config{
			Enabled:          cfg.OtelEnabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   cfg.Version,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.OtelExporterEndpoint,
			ExporterProtocol: cfg.OtelExporterProtocol,
			SamplingRatio:    cfg.OtelSamplingRatio,
		}, metrics.Config{
			Enabled:          cfg.OtelEnabled,
			ExporterEndpoint: cfg.OtelExporterEndpoint,
			ExporterProtocol: cfg.OtelExporterProtocol,
			ServiceName:      cfg.ServiceName,
			Environment:      cfg.Environment,
		}
}
