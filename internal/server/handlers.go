package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/instrumentation"
	"github.com/teemow/consultcal/internal/logging"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeMissingDate         = "missing_date"
	CodeInvalidDate         = "invalid_date"
	CodeInvalidTime         = "invalid_time"
	CodeMissingFields       = "missing_fields"
	CodeInvalidBody         = "invalid_body"
	CodeCalendarRejected    = "calendar_rejected"
	CodeCalendarUnavailable = "calendar_unavailable"
	CodeInternal            = "internal_error"
)

// SlotsResponse is the body of a successful slots query.
type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// BookResponse is the body of a successful booking.
type BookResponse struct {
	OK bool `json:"ok"`
	booking.Confirmation
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func (s *APIServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   CodeMissingDate,
			Details: "Missing date (YYYY-MM-DD).",
		})
		return
	}

	slots, err := s.booker.AvailableSlots(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Date: date, Slots: slots})
}

func (s *APIServer) handleBook(w http.ResponseWriter, r *http.Request) {
	var raw booking.RawRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   CodeInvalidBody,
			Details: "request body must be a JSON object",
		})
		return
	}

	conf, err := s.booker.Book(r.Context(), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BookResponse{OK: true, Confirmation: conf})
}

// writeError maps a booking error onto a status code and error body.
func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)
	if status >= http.StatusInternalServerError {
		attrs := []any{
			logging.RequestID(RequestIDFromContext(r.Context())),
			"path", r.URL.Path,
			"status", status,
			logging.Err(err),
		}
		if traceID := instrumentation.GetTraceID(r.Context()); traceID != "" {
			attrs = append(attrs, "trace_id", traceID)
		}
		s.logger.Error("request failed", attrs...)
	}
	writeJSON(w, status, body)
}

func classifyError(err error) (int, ErrorResponse) {
	var fe *booking.FieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusBadRequest, ErrorResponse{Error: CodeMissingFields, Details: fe.Error(), Fields: fe.Fields}
	case errors.Is(err, booking.ErrMissingField):
		return http.StatusBadRequest, ErrorResponse{Error: CodeMissingFields, Details: err.Error()}
	case errors.Is(err, booking.ErrInvalidDate):
		return http.StatusBadRequest, ErrorResponse{Error: CodeInvalidDate, Details: err.Error()}
	case errors.Is(err, booking.ErrInvalidTime):
		return http.StatusBadRequest, ErrorResponse{Error: CodeInvalidTime, Details: err.Error()}
	case errors.Is(err, booking.ErrCollaboratorRejected):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: CodeCalendarRejected, Details: err.Error()}
	case errors.Is(err, booking.ErrCollaboratorUnavailable):
		status := http.StatusBadGateway
		if booking.IsTransient(err) {
			status = http.StatusServiceUnavailable
		}
		return status, ErrorResponse{Error: CodeCalendarUnavailable, Details: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: CodeInternal}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
