package instrumentation

import (
	"strings"

	"github.com/teemow/consultcal/internal/logging"
)

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// Booking requests carry free-form values (mode, email). Always pass them
// through these helpers before using them as metric labels.

// Bounded values for the booking mode label.
const (
	ModeOnline = "online"
	ModeOther  = "other"
)

// ExtractUserDomain extracts the domain part from an email address.
// This reduces cardinality by using the domain instead of the full email.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if domain := logging.ExtractDomain(email); domain != "" {
		return strings.ToLower(domain)
	}
	return "unknown"
}

// NormalizeMode folds a client supplied booking mode into "online" or "other".
//
//	NormalizeMode("online")    // "online"
//	NormalizeMode("")          // "online"
//	NormalizeMode("in-person") // "other"
func NormalizeMode(mode string) string {
	if mode == "" || mode == ModeOnline {
		return ModeOnline
	}
	return ModeOther
}

// Google Calendar operations recorded in google_api_* metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationFreeBusy = "freebusy"
	OperationInsert   = "insert"
)
