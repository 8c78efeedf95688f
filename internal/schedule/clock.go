package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultDurationMinutes is assumed when a booking carries no end time.
const DefaultDurationMinutes = 120

// InvalidTimeError reports a wall-clock string the engine refused to parse.
// Malformed times fail loudly instead of defaulting to zero so corrupted
// records never mask real conflicts.
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time format %q, expected HH:MM", e.Value)
}

// ToMinutes converts an "HH:MM" wall-clock string to minutes since midnight.
func ToMinutes(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, &InvalidTimeError{Value: value}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &InvalidTimeError{Value: value}
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &InvalidTimeError{Value: value}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &InvalidTimeError{Value: value}
	}

	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight back to "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps tests two half-open intervals [aStart,aEnd) and [bStart,bEnd).
// A booking ending at 20:00 does not conflict with one starting at 20:00.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// interval is a booking's parsed time range in minutes since midnight.
type interval struct {
	start int
	end   int
}

// parseInterval resolves a booking's [start,end) range, applying the default
// duration when no end time is set.
func parseInterval(b *Booking, defaultDuration int) (interval, error) {
	start, err := ToMinutes(b.StartTime)
	if err != nil {
		return interval{}, err
	}

	if b.EndTime == "" {
		return interval{start: start, end: start + defaultDuration}, nil
	}

	end, err := ToMinutes(b.EndTime)
	if err != nil {
		return interval{}, err
	}

	return interval{start: start, end: end}, nil
}
