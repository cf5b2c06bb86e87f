package instrumentation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/teemow/consultcal/internal/logging"
)

// Config holds the configuration for OpenTelemetry instrumentation.
// The cmd package fills it from flags, environment and config file.
type Config struct {
	// ServiceName is reported as service.name (default: consultcal).
	ServiceName    string
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname when empty.
	ServiceInstanceID string
	K8sNamespace      string
	K8sPodName        string

	// Enabled turns metrics and tracing on. A disabled provider hands out
	// no-op meters and tracers.
	Enabled bool

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string

	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string

	// OTLPEndpoint is host:port of the collector, without scheme.
	OTLPEndpoint string

	// OTLPInsecure exports over plain HTTP. Only for local collectors.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based ratio in [0, 1].
	TraceSamplingRate float64

	// DetailedLabels records booking modes verbatim instead of folding them
	// into "online" and "other".
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the booking audit trail.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludePII writes booker names and addresses. Otherwise only a
	// hashed identifier is logged.
	IncludePII bool

	// LogLevel is the level successful bookings are written at.
	LogLevel string
}

// DefaultConfig returns the configuration used when nothing is overridden:
// Prometheus metrics, no tracing, audit without PII.
func DefaultConfig() Config {
	return Config{
		ServiceName:       DefaultServiceName,
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
		AuditLogging: AuditLoggingConfig{
			Enabled:  true,
			LogLevel: "info",
		},
	}
}

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: %s", c.MetricsExporter, strings.Join(metricsExporters, ", "))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: %s", c.TracingExporter, strings.Join(tracingExporters, ", "))
	}

	if c.OTLPEndpoint == "" {
		if c.TracingExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
		}
		if c.MetricsExporter == ExporterOTLP {
			return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
		}
	}

	if c.AuditLogging.LogLevel != "" {
		if _, err := logging.ParseLevel(c.AuditLogging.LogLevel); err != nil {
			return fmt.Errorf("invalid audit log level: %w", err)
		}
	}

	return nil
}

// Constants for metric label values.
const (
	DefaultServiceName = "consultcal"

	// Status values
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusInvalid  = "invalid"
	StatusRejected = "rejected"

	// OAuth token refresh results
	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	// Google service names
	ServiceCalendar = "calendar"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)
