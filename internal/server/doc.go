// Package server exposes the booking service over HTTP.
//
// # Routes
//
// APIServer serves the public API:
//   - GET  /api/calendar/slots?date=YYYY-MM-DD returns {"date", "slots"}
//   - POST /api/calendar/book returns {"ok", "eventId", "htmlLink", "hangoutLink"}
//   - GET  /healthz, /readyz and /healthz/detailed for Kubernetes probes
//   - an optional static directory mounted at "/"
//
// Failures are returned as {"error": code, "details": message}. Validation
// problems map to 400, calendar rejections to 422 and calendar outages to
// 503 (transient) or 502.
//
// # Middleware
//
// Every request gets an X-Request-Id, an access log line and CORS headers
// when origins are configured. The API routes are wrapped in a server span
// and recorded in http_requests_total. Booking requests can be rate
// limited per client IP.
//
// MetricsServer exposes the Prometheus registry of an instrumentation
// provider on its own port.
package server
