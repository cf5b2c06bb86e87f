// Package logging provides structured logging helpers for consultcal.
//
// All logging goes through the standard library's slog package. This package
// only fixes attribute names and keeps personal data out of the logs.
//
// Build the process logger once:
//
//	logger, err := logging.New("info", logging.FormatJSON, os.Stderr)
//
// Attach standard attributes:
//
//	logger = logging.WithOperation(logger, "booking.book")
//	logger.Info("booked consultation", logging.Date(req.Date), logging.UserHash(req.Email))
//
// Booker email addresses are never logged directly; UserHash replaces them
// with a short stable hash so log lines can still be correlated.
package logging
