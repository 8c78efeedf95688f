package event

import "time"

const (
	// ScheduleConflictsTopic delivers conflict reports produced by the reserve service.
	ScheduleConflictsTopic = "schedule.conflicts"
	// ReservationChangesTopic carries booking mutations emitted by the table service.
	ReservationChangesTopic = "tables.reservations"

	// EventConflictsDetected identifies a conflict report payload.
	EventConflictsDetected = "schedule.conflicts.detected"
	// EventReservationChanged identifies a booking create/update/cancel payload.
	EventReservationChanged = "table.reservation.changed"
)

// ConflictsDetectedEvent summarizes a detection run for the admin and
// notification services. Full conflict records stay on the HTTP surface;
// the event carries only what alerting needs.
type ConflictsDetectedEvent struct {
	EventType      string    `json:"event_type"`
	Date           string    `json:"date,omitempty"`
	ConflictCount  int       `json:"conflict_count"`
	HighSeverity   int       `json:"high_severity"`
	AutoResolvable int       `json:"auto_resolvable"`
	ConflictIDs    []string  `json:"conflict_ids"`
	Source         string    `json:"source,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ReservationChangedEvent captures the minimal information the reserve
// service needs to invalidate cached availability for a date.
type ReservationChangedEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	Date          string    `json:"date"`
	Status        string    `json:"status,omitempty"`
	Source        string    `json:"source,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
