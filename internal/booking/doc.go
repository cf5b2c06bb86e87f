// Package booking holds the domain logic of consultcal: computing free
// consultation slots from busy intervals and turning a booking request into a
// calendar event draft.
//
// Both core functions are pure. They take an explicit Config (timezone,
// working window, slot length) instead of reading process state, so they can
// be exercised without any network dependency.
//
// The Service type ties the pure functions to a Calendar collaborator, which
// fetches busy intervals and submits events. The Google implementation lives
// in internal/calendar; calendar.Memory is an in-memory stand-in.
//
// Example usage:
//
//	cfg := booking.DefaultConfig()
//	slots, err := booking.ComputeSlots(cfg, "2025-06-02", busy)
//	if err != nil {
//	    return err
//	}
package booking
