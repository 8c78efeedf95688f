package schedule

import (
	"context"
)

// Tier is a qualitative label summarizing booked-vs-total capacity for a
// date/slot. It is purely presentational; the calendar UI renders it.
type Tier string

const (
	TierHigh        Tier = "high"
	TierMedium      Tier = "medium"
	TierLow         Tier = "low"
	TierFull        Tier = "full"
	TierClosed      Tier = "closed"
	TierUnavailable Tier = "unavailable"
)

// OpeningHours is the external collaborator answering whether the venue is
// open at a wall-clock minute on a date. A nil lookup means always open.
type OpeningHours interface {
	IsOpen(ctx context.Context, date string, minuteOfDay int) (bool, error)
}

// Estimator computes availability tiers. It shares the capacity semantics of
// the detector's capacity pass: every non-cancelled booking occupies seats.
type Estimator struct {
	hours      OpeningHours
	thresholds Thresholds
}

func NewEstimator(hours OpeningHours, thresholds Thresholds) *Estimator {
	return &Estimator{hours: hours, thresholds: thresholds}
}

// Estimate returns the tier for a date, optionally narrowed to the 30-minute
// slot starting at the "HH:MM" given in slot. totalCapacity is the venue-wide
// sum of table capacities.
func (e *Estimator) Estimate(ctx context.Context, date, slot string, bookings []*Booking, totalCapacity int) (Tier, error) {
	slotStart := -1
	if slot != "" {
		start, err := ToMinutes(slot)
		if err != nil {
			return "", err
		}
		slotStart = start

		if e.hours != nil {
			open, err := e.hours.IsOpen(ctx, date, slotStart)
			if err != nil {
				return "", err
			}
			if !open {
				return TierClosed, nil
			}
		}
	}

	// An empty inventory can never seat anyone; short-circuit before the
	// ratio to avoid dividing by zero.
	if totalCapacity <= 0 {
		return TierUnavailable, nil
	}

	booked := 0
	for _, b := range bookings {
		if b == nil || !b.CountsForCapacity() || b.Date != date {
			continue
		}
		if slotStart >= 0 {
			iv, err := parseInterval(b, e.thresholds.DefaultDurationMinutes)
			if err != nil {
				// Presentational path: a corrupt record is skipped here and
				// reported by the detector instead.
				continue
			}
			if !Overlaps(iv.start, iv.end, slotStart, slotStart+e.thresholds.SlotMinutes) {
				continue
			}
		}
		booked += b.GuestCount
	}

	ratio := float64(totalCapacity-booked) / float64(totalCapacity)
	switch {
	case ratio >= 0.7:
		return TierHigh, nil
	case ratio >= 0.3:
		return TierMedium, nil
	case ratio > 0:
		return TierLow, nil
	default:
		return TierFull, nil
	}
}
