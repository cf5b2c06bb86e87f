package booking

import (
	"strings"
)

// ModeOnline is the default delivery mode. Only online bookings request a
// conferencing link.
const ModeOnline = "online"

// RawRequest is a booking request as received from a client.
type RawRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Mode  string `json:"mode,omitempty"`
}

// Request is a validated booking request.
type Request struct {
	Name  string
	Email string
	Date  string
	Time  string
	Mode  string
}

// Online reports whether the booking should get a conferencing link.
func (r Request) Online() bool {
	return r.Mode == "" || r.Mode == ModeOnline
}

// Validate checks that every required field is present and well formed.
// An absent or empty mode defaults to ModeOnline; any other mode is kept
// verbatim.
func Validate(raw RawRequest) (Request, error) {
	req := Request{
		Name:  strings.TrimSpace(raw.Name),
		Email: strings.TrimSpace(raw.Email),
		Date:  strings.TrimSpace(raw.Date),
		Time:  strings.TrimSpace(raw.Time),
		Mode:  raw.Mode,
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"date", req.Date},
		{"time", req.Time},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Request{}, &FieldError{Fields: missing}
	}

	if _, err := ParseDate(req.Date); err != nil {
		return Request{}, err
	}
	if _, err := ParseClock(req.Time); err != nil {
		return Request{}, err
	}

	if req.Mode == "" {
		req.Mode = ModeOnline
	}
	return req, nil
}
