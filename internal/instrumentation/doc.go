// Package instrumentation provides OpenTelemetry metrics, tracing and the
// booking audit trail for consultcal.
//
// # Metrics
//
// HTTP:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Google API:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//   - oauth_token_refresh_total: Counter of access token refreshes by result
//
// Booking:
//   - slot_queries_total: Counter of availability queries by status
//   - slots_offered: Histogram of free slots per successful query
//   - bookings_total: Counter of booking attempts by mode and status
//
// The mode label is folded into "online" and "other" unless
// METRICS_DETAILED_LABELS is set.
//
// # Tracing
//
// Spans are created for HTTP requests, booking.slots, booking.book and
// google.calendar.<operation>.
//
// # Configuration
//
// Config is plain data. The consultcal command fills it from its settings,
// which accept the usual variables (INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG,
// OTEL_SERVICE_NAME, AUDIT_LOGGING_*) next to their CONSULTCAL_ names.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar,
//		instrumentation.OperationInsert, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
