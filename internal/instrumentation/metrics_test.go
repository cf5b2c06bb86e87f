package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func createTestProvider(t *testing.T) (*Provider, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider, ctx
}

// newManualMetrics returns a recorder whose data can be collected in tests.
func newManualMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) map[attribute.Distinct]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	out := map[attribute.Distinct]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, md.Data)
			}
			for _, dp := range sum.DataPoints {
				out[dp.Attributes.Equivalent()] += dp.Value
			}
		}
	}
	return out
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	provider, ctx := createTestProvider(t)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/api/calendar/slots", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/api/calendar/book", 502, 50*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	metrics, reader := newManualMetrics(t, false)
	ctx := context.Background()

	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationFreeBusy, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationFreeBusy, StatusSuccess, 300*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsert, StatusRejected, 500*time.Millisecond)

	got := collectSum(t, reader, "google_api_operations_total")
	freebusy := attribute.NewSet(
		attribute.String(attrService, ServiceCalendar),
		attribute.String(attrOperation, OperationFreeBusy),
		attribute.String(attrStatus, StatusSuccess),
	)
	if got[freebusy.Equivalent()] != 2 {
		t.Errorf("freebusy success count = %d, want 2", got[freebusy.Equivalent()])
	}
}

func TestMetrics_RecordBooking(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		modes    []string
		want     map[string]int64
	}{
		{
			name:     "modes folded by default",
			detailed: false,
			modes:    []string{"online", "in-person", "phone", ""},
			want:     map[string]int64{ModeOnline: 2, ModeOther: 2},
		},
		{
			name:     "detailed labels keep modes",
			detailed: true,
			modes:    []string{"online", "in-person", "in-person"},
			want:     map[string]int64{"online": 1, "in-person": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics, reader := newManualMetrics(t, tt.detailed)
			for _, mode := range tt.modes {
				metrics.RecordBooking(context.Background(), mode, StatusSuccess)
			}

			got := collectSum(t, reader, "bookings_total")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d series, want %d", len(got), len(tt.want))
			}
			for mode, count := range tt.want {
				set := attribute.NewSet(
					attribute.String(attrMode, mode),
					attribute.String(attrStatus, StatusSuccess),
				)
				key := set.Equivalent()
				if got[key] != count {
					t.Errorf("bookings_total{mode=%q} = %d, want %d", mode, got[key], count)
				}
			}
		})
	}
}

func TestMetrics_RecordSlotQuery(t *testing.T) {
	metrics, reader := newManualMetrics(t, false)
	ctx := context.Background()

	metrics.RecordSlotQuery(ctx, StatusSuccess, 16)
	metrics.RecordSlotQuery(ctx, StatusInvalid, 0)
	metrics.RecordSlotQuery(ctx, StatusError, 0)

	got := collectSum(t, reader, "slot_queries_total")
	for _, status := range []string{StatusSuccess, StatusInvalid, StatusError} {
		set := attribute.NewSet(attribute.String(attrStatus, status))
		key := set.Equivalent()
		if got[key] != 1 {
			t.Errorf("slot_queries_total{status=%q} = %d, want 1", status, got[key])
		}
	}
}

func TestMetrics_RecordOAuthTokenRefresh(t *testing.T) {
	provider, ctx := createTestProvider(t)

	// Should not panic
	provider.Metrics().RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	provider.Metrics().RecordOAuthTokenRefresh(ctx, OAuthResultFailure)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	ctx := context.Background()
	metrics := provider.Metrics()

	// None of these should panic
	metrics.RecordHTTPRequest(ctx, "GET", "/", 200, time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsert, StatusSuccess, time.Millisecond)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordSlotQuery(ctx, StatusSuccess, 3)
	metrics.RecordBooking(ctx, "online", StatusSuccess)

	var nilMetrics *Metrics
	nilMetrics.RecordBooking(ctx, "online", StatusSuccess)
}
