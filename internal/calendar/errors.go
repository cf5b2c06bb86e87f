package calendar

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/consultcal/internal/booking"
	"github.com/teemow/consultcal/internal/instrumentation"
)

// classify maps a Google API failure onto the booking error taxonomy.
// Client errors other than 408 and 429 are rejections; everything else
// means the calendar is unavailable.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusRequestTimeout, apiErr.Code == http.StatusTooManyRequests:
			return booking.Unavailable(op, true, err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return booking.Rejected(op, err)
		default:
			return booking.Unavailable(op, apiErr.Code >= 500, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return booking.Unavailable(op, true, err)
	}
	if errors.Is(err, context.Canceled) {
		return booking.Unavailable(op, false, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return booking.Unavailable(op, true, err)
	}

	return booking.Unavailable(op, false, err)
}

// freeBusyError reports per-calendar free/busy errors such as "notFound".
// Backend errors are transient; anything else is a rejection.
func freeBusyError(calendarID string, errs []*calendar.Error) error {
	reasons := make([]string, 0, len(errs))
	transient := false
	for _, e := range errs {
		reasons = append(reasons, e.Reason)
		if e.Reason == "backendError" || e.Reason == "internalError" {
			transient = true
		}
	}

	err := fmt.Errorf("calendar %q: %s", calendarID, strings.Join(reasons, ", "))
	if transient {
		return booking.Unavailable(instrumentation.OperationFreeBusy, true, err)
	}
	return booking.Rejected(instrumentation.OperationFreeBusy, err)
}

// statusOf returns the metric status for a classified error.
func statusOf(err error) string {
	if errors.Is(err, booking.ErrCollaboratorRejected) {
		return instrumentation.StatusRejected
	}
	return instrumentation.StatusError
}
