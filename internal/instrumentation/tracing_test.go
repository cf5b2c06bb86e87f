package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// installRecorder sets a recording global tracer provider for the test.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithCalendar("primary").
		WithDate("2025-06-02").
		WithMode("in-person").
		WithEventID("evt1").
		WithBusyCount(3).
		Build()

	got := attrMap(attrs)
	want := map[string]any{
		SpanAttrCalendar:  "primary",
		SpanAttrDate:      "2025-06-02",
		SpanAttrMode:      ModeOther,
		SpanAttrEventID:   "evt1",
		SpanAttrBusyCount: int64(3),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d attributes, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithCalendar("").
		WithDate("").
		WithEventID("").
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %d", len(attrs))
	}
}

func TestStartSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "booking.slots", attribute.String(SpanAttrDate, "2025-06-02"))
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "booking.slots" {
		t.Errorf("span name = %q, want booking.slots", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", ended[0].Status().Code)
	}
	if attrMap(ended[0].Attributes())[SpanAttrDate] != "2025-06-02" {
		t.Error("date attribute missing")
	}
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceCalendar, OperationFreeBusy)
	SetSpanError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Name() != "google.calendar.freebusy" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", s.SpanKind())
	}
	if s.Status().Code != codes.Error || s.Status().Description != "boom" {
		t.Errorf("status = %+v, want error boom", s.Status())
	}
	attrs := attrMap(s.Attributes())
	if attrs[SpanAttrService] != ServiceCalendar || attrs[SpanAttrOperation] != OperationFreeBusy {
		t.Errorf("unexpected attributes %v", attrs)
	}
}

func TestStartHTTPSpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartHTTPSpan(context.Background(), "GET", "/api/calendar/slots")
	if GetTraceID(ctx) == "" || GetSpanID(ctx) == "" {
		t.Error("expected trace and span IDs in context")
	}
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].SpanKind() != trace.SpanKindServer {
		t.Fatalf("expected one server span, got %v", ended)
	}
	if ended[0].Name() != "GET /api/calendar/slots" {
		t.Errorf("span name = %q", ended[0].Name())
	}
}

func TestSetSpanError_Nil(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "x")
	SetSpanError(span, nil)
	span.End()

	if code := recorder.Ended()[0].Status().Code; code != codes.Unset {
		t.Errorf("status = %v, want Unset", code)
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span ID, got %q", id)
	}
}

func TestSetHTTPStatus(t *testing.T) {
	recorder := installRecorder(t)

	_, ok := StartHTTPSpan(context.Background(), "GET", "/ok")
	SetHTTPStatus(ok, 200)
	ok.End()

	_, failed := StartHTTPSpan(context.Background(), "POST", "/fail")
	SetHTTPStatus(failed, 503)
	failed.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected two spans, got %d", len(ended))
	}
	if code := ended[0].Status().Code; code != codes.Unset {
		t.Errorf("2xx status = %v, want Unset", code)
	}
	if code := ended[1].Status().Code; code != codes.Error {
		t.Errorf("5xx status = %v, want Error", code)
	}
	if got := attrMap(ended[1].Attributes())["http.response.status_code"]; got != int64(503) {
		t.Errorf("status attribute = %v", got)
	}
}
