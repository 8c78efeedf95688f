package schedule

import (
	"context"
	"fmt"
	"time"
)

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// ValidateDetectRequest checks the structural invariants of a snapshot.
// Time strings are deliberately not checked here: the detector parses them
// itself and attributes failures to individual bookings.
func ValidateDetectRequest(ctx context.Context, req DetectRequest) []string {
	var errors []string

	for i, b := range req.Bookings {
		if b == nil {
			errors = append(errors, fmt.Sprintf("bookings[%d] is null", i))
			continue
		}
		if !validDate(b.Date) {
			errors = append(errors, fmt.Sprintf("bookings[%d] date must be YYYY-MM-DD", i))
		}
		if b.StartTime == "" {
			errors = append(errors, fmt.Sprintf("bookings[%d] start_time is required", i))
		}
		if b.GuestCount <= 0 {
			errors = append(errors, fmt.Sprintf("bookings[%d] guest_count must be greater than 0", i))
		}
		if b.Status != "" && !ValidBookingStatus(b.Status) {
			errors = append(errors, fmt.Sprintf("bookings[%d] has invalid status", i))
		}
	}

	for i, t := range req.Tables {
		if t == nil {
			errors = append(errors, fmt.Sprintf("tables[%d] is null", i))
			continue
		}
		if t.Capacity <= 0 {
			errors = append(errors, fmt.Sprintf("tables[%d] capacity must be greater than 0", i))
		}
	}

	return errors
}

// ValidateAvailabilityQuery checks the date and optional slot query params.
func ValidateAvailabilityQuery(ctx context.Context, date, slot string) []string {
	var errors []string

	if date == "" {
		errors = append(errors, "date is required")
	} else if !validDate(date) {
		errors = append(errors, "date must be YYYY-MM-DD")
	}

	if slot != "" {
		if _, err := ToMinutes(slot); err != nil {
			errors = append(errors, "slot must be HH:MM")
		}
	}

	return errors
}
