package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/consultcal/internal/booking"
)

// entryPointVideo is the conference entry point type carrying the join link.
const entryPointVideo = "video"

// toEvent converts a draft into a Google Calendar event.
func toEvent(draft booking.EventDraft) *calendar.Event {
	event := &calendar.Event{
		Summary:     draft.Summary,
		Description: draft.Description,
		Start: &calendar.EventDateTime{
			DateTime: draft.Start.Format(time.RFC3339),
			TimeZone: draft.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: draft.End.Format(time.RFC3339),
			TimeZone: draft.TimeZone,
		},
		Reminders: &calendar.EventReminders{UseDefault: true},
	}

	for _, email := range draft.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	if draft.Conference != nil {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: draft.Conference.RequestID,
			},
		}
	}

	return event
}

// toConfirmation extracts the identifiers a client needs from a created event.
func toConfirmation(event *calendar.Event) booking.Confirmation {
	if event == nil {
		return booking.Confirmation{}
	}

	conf := booking.Confirmation{
		EventID:        event.Id,
		HTMLLink:       event.HtmlLink,
		ConferenceLink: event.HangoutLink,
	}

	if conf.ConferenceLink == "" && event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == entryPointVideo {
				conf.ConferenceLink = ep.Uri
				break
			}
		}
	}

	return conf
}

// toIntervals parses free/busy periods.
func toIntervals(periods []*calendar.TimePeriod) ([]booking.Interval, error) {
	busy := make([]booking.Interval, 0, len(periods))
	for _, p := range periods {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy end %q: %w", p.End, err)
		}
		busy = append(busy, booking.Interval{Start: start, End: end})
	}
	return busy, nil
}
