package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/google"
	"github.com/teemow/consultcal/internal/instrumentation"
)

// envPrefix namespaces every setting in the environment, e.g. CONSULTCAL_LOG_LEVEL.
const envPrefix = "CONSULTCAL"

// Calendar backends selectable with --calendar.
const (
	backendGoogle = "google"
	backendMemory = "memory"
)

// legacyEnv maps settings to the unprefixed variable names deployments
// already use, in order of preference. The prefixed name always wins.
var legacyEnv = map[string][]string{
	"port":                 {"PORT"},
	"google-client-id":     {"GOOGLE_CLIENT_ID"},
	"google-client-secret": {"GOOGLE_CLIENT_SECRET"},
	"google-refresh-token": {"GOOGLE_REFRESH_TOKEN"},
	"calendar-id":          {"GOOGLE_CALENDAR_ID"},
	"metrics-enabled":      {"METRICS_ENABLED"},
	"metrics-addr":         {"METRICS_ADDR"},

	"instrumentation-enabled": {"INSTRUMENTATION_ENABLED"},
	"service-name":            {"OTEL_SERVICE_NAME"},
	"service-instance-id":     {"OTEL_SERVICE_INSTANCE_ID"},
	"k8s-namespace":           {"K8S_NAMESPACE", "POD_NAMESPACE"},
	"k8s-pod-name":            {"K8S_POD_NAME", "HOSTNAME"},
	"metrics-exporter":        {"METRICS_EXPORTER"},
	"tracing-exporter":        {"TRACING_EXPORTER"},
	"otlp-endpoint":           {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"otlp-insecure":           {"OTEL_EXPORTER_OTLP_INSECURE"},
	"trace-sampling-rate":     {"OTEL_TRACES_SAMPLER_ARG"},
	"metrics-detailed-labels": {"METRICS_DETAILED_LABELS"},
	"audit-enabled":           {"AUDIT_LOGGING_ENABLED"},
	"audit-include-pii":       {"AUDIT_LOGGING_INCLUDE_PII"},
	"audit-level":             {"AUDIT_LOGGING_LEVEL"},
}

// Settings is the resolved configuration of a command run. Values come from
// flags, then the environment, then the config file, then defaults.
type Settings struct {
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	Calendar           string        `mapstructure:"calendar"`
	CalendarID         string        `mapstructure:"calendar-id"`
	TimeZone           string        `mapstructure:"timezone"`
	DayStart           string        `mapstructure:"day-start"`
	DayEnd             string        `mapstructure:"day-end"`
	SlotLength         time.Duration `mapstructure:"slot-length"`
	SummaryPrefix      string        `mapstructure:"summary-prefix"`
	GoogleClientID     string        `mapstructure:"google-client-id"`
	GoogleClientSecret string        `mapstructure:"google-client-secret"`
	GoogleRefreshToken string        `mapstructure:"google-refresh-token"`
	GoogleRedirectURL  string        `mapstructure:"google-redirect-url"`
	SendUpdates        string        `mapstructure:"send-updates"`

	Port              string        `mapstructure:"port"`
	Addr              string        `mapstructure:"addr"`
	StaticDir         string        `mapstructure:"static-dir"`
	CORSOrigins       string        `mapstructure:"cors-origins"`
	BookRateLimit     float64       `mapstructure:"book-rate-limit"`
	BookRateBurst     int           `mapstructure:"book-rate-burst"`
	TrustForwardedFor bool          `mapstructure:"trust-forwarded-for"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown-timeout"`

	MetricsEnabled bool   `mapstructure:"metrics-enabled"`
	MetricsAddr    string `mapstructure:"metrics-addr"`

	InstrumentationEnabled bool    `mapstructure:"instrumentation-enabled"`
	ServiceName            string  `mapstructure:"service-name"`
	ServiceInstanceID      string  `mapstructure:"service-instance-id"`
	K8sNamespace           string  `mapstructure:"k8s-namespace"`
	K8sPodName             string  `mapstructure:"k8s-pod-name"`
	MetricsExporter        string  `mapstructure:"metrics-exporter"`
	TracingExporter        string  `mapstructure:"tracing-exporter"`
	OTLPEndpoint           string  `mapstructure:"otlp-endpoint"`
	OTLPInsecure           bool    `mapstructure:"otlp-insecure"`
	TraceSamplingRate      float64 `mapstructure:"trace-sampling-rate"`
	MetricsDetailedLabels  bool    `mapstructure:"metrics-detailed-labels"`
	AuditEnabled           bool    `mapstructure:"audit-enabled"`
	AuditIncludePII        bool    `mapstructure:"audit-include-pii"`
	AuditLevel             string  `mapstructure:"audit-level"`
}

func setDefaults(v *viper.Viper) {
	defaults := booking.DefaultConfig()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("calendar", backendGoogle)
	v.SetDefault("calendar-id", defaults.CalendarID)
	v.SetDefault("timezone", booking.DefaultTimeZone)
	v.SetDefault("day-start", defaults.DayStart.String())
	v.SetDefault("day-end", defaults.DayEnd.String())
	v.SetDefault("slot-length", defaults.SlotLength)
	v.SetDefault("summary-prefix", defaults.SummaryPrefix)
	v.SetDefault("google-redirect-url", google.PlaygroundRedirectURL)
	v.SetDefault("send-updates", "all")
	v.SetDefault("port", "3000")
	v.SetDefault("static-dir", "public")
	v.SetDefault("cors-origins", "*")
	v.SetDefault("book-rate-burst", 5)
	v.SetDefault("shutdown-timeout", 30*time.Second)
	v.SetDefault("metrics-addr", ":9090")

	instr := instrumentation.DefaultConfig()
	v.SetDefault("instrumentation-enabled", instr.Enabled)
	v.SetDefault("service-name", instr.ServiceName)
	v.SetDefault("service-instance-id", "")
	v.SetDefault("k8s-namespace", "")
	v.SetDefault("k8s-pod-name", "")
	v.SetDefault("metrics-exporter", instr.MetricsExporter)
	v.SetDefault("tracing-exporter", instr.TracingExporter)
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("otlp-insecure", false)
	v.SetDefault("trace-sampling-rate", instr.TraceSamplingRate)
	v.SetDefault("metrics-detailed-labels", false)
	v.SetDefault("audit-enabled", instr.AuditLogging.Enabled)
	v.SetDefault("audit-include-pii", instr.AuditLogging.IncludePII)
	v.SetDefault("audit-level", instr.AuditLogging.LogLevel)
}

// loadSettings resolves Settings for cmd. configFile is optional; when set
// it must exist and parse.
func loadSettings(cmd *cobra.Command, configFile string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(append([]string{key, envName(key)}, legacy...)...); err != nil {
			return Settings{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if cmd != nil {
		var bindErr error
		bind := func(f *pflag.Flag) {
			if f.Name == "config" || f.Name == "help" || f.Name == "version" {
				return
			}
			if err := v.BindPFlag(f.Name, f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
		if bindErr != nil {
			return Settings{}, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

// envName returns the prefixed environment variable for a setting key.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// BookingConfig builds the booking core configuration.
func (s Settings) BookingConfig() (booking.Config, error) {
	cfg := booking.DefaultConfig()

	if s.TimeZone != "" {
		loc, err := time.LoadLocation(s.TimeZone)
		if err != nil {
			return booking.Config{}, fmt.Errorf("invalid timezone %q: %w", s.TimeZone, err)
		}
		cfg.Location = loc
	}
	if s.DayStart != "" {
		start, err := booking.ParseClock(s.DayStart)
		if err != nil {
			return booking.Config{}, fmt.Errorf("invalid day start: %w", err)
		}
		cfg.DayStart = start
	}
	if s.DayEnd != "" {
		end, err := booking.ParseClock(s.DayEnd)
		if err != nil {
			return booking.Config{}, fmt.Errorf("invalid day end: %w", err)
		}
		cfg.DayEnd = end
	}
	if s.SlotLength != 0 {
		cfg.SlotLength = s.SlotLength
	}
	if s.CalendarID != "" {
		cfg.CalendarID = s.CalendarID
	}
	if s.SummaryPrefix != "" {
		cfg.SummaryPrefix = s.SummaryPrefix
	}

	if err := cfg.Validate(); err != nil {
		return booking.Config{}, err
	}
	return cfg, nil
}

// InstrumentationConfig builds the OpenTelemetry configuration.
func (s Settings) InstrumentationConfig(version string) instrumentation.Config {
	return instrumentation.Config{
		ServiceName:       s.ServiceName,
		ServiceVersion:    version,
		ServiceInstanceID: s.ServiceInstanceID,
		K8sNamespace:      s.K8sNamespace,
		K8sPodName:        s.K8sPodName,
		Enabled:           s.InstrumentationEnabled,
		MetricsExporter:   s.MetricsExporter,
		TracingExporter:   s.TracingExporter,
		OTLPEndpoint:      s.OTLPEndpoint,
		OTLPInsecure:      s.OTLPInsecure,
		TraceSamplingRate: s.TraceSamplingRate,
		DetailedLabels:    s.MetricsDetailedLabels,
		AuditLogging: instrumentation.AuditLoggingConfig{
			Enabled:    s.AuditEnabled,
			IncludePII: s.AuditIncludePII,
			LogLevel:   s.AuditLevel,
		},
	}
}

// Credentials returns the Google OAuth client credentials.
func (s Settings) Credentials() google.Credentials {
	return google.Credentials{
		ClientID:     s.GoogleClientID,
		ClientSecret: s.GoogleClientSecret,
		RefreshToken: s.GoogleRefreshToken,
		RedirectURL:  s.GoogleRedirectURL,
	}
}

// ListenAddr returns Addr when set, otherwise ":" + Port.
func (s Settings) ListenAddr() string {
	if s.Addr != "" {
		return s.Addr
	}
	return ":" + strings.TrimPrefix(s.Port, ":")
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
