// Package calendar connects the booking service to Google Calendar.
//
// Client implements booking.Calendar on top of the Calendar v3 API: free/busy
// queries for availability and event insertion with an optional video
// conference. Google API errors are classified into booking.ErrCollaboratorRejected
// and booking.ErrCollaboratorUnavailable.
//
// Memory is an in-process implementation for tests and local development.
//
// Example usage:
//
//	provider := google.NewRefreshTokenProvider(creds, metrics)
//	client, err := calendar.NewClient(ctx, provider, calendar.WithMetrics(metrics))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	busy, err := client.FetchBusyIntervals(ctx, "primary", from, to)
package calendar
