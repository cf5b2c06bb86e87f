package google

// Calendar scopes.
const (
	// ScopeCalendar grants full calendar access.
	ScopeCalendar = "https://www.googleapis.com/auth/calendar"

	// ScopeCalendarEvents grants read/write access to events.
	ScopeCalendarEvents = "https://www.googleapis.com/auth/calendar.events"

	// ScopeCalendarFreeBusy grants access to free/busy information only.
	ScopeCalendarFreeBusy = "https://www.googleapis.com/auth/calendar.freebusy"
)

// DefaultOAuthScopes are requested when Credentials.Scopes is empty.
// Free/busy queries and event insertion with conferencing both need them.
var DefaultOAuthScopes = []string{
	ScopeCalendarEvents,
	ScopeCalendarFreeBusy,
}
