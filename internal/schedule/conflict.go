package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ConflictKind string

const (
	ConflictCapacityExceeded      ConflictKind = "capacity_exceeded"
	ConflictDoubleBooking         ConflictKind = "double_booking"
	ConflictTimeOverlapCongestion ConflictKind = "time_overlap_congestion"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Capacity conflict reasons.
const (
	ReasonAssignedTableTooSmall = "assigned_table_too_small"
	ReasonNoSuitableTable       = "no_suitable_table"
)

// conflictNamespace seeds the v5 UUIDs so conflict ids are a pure function of
// the participating bookings and the conflict kind.
var conflictNamespace = uuid.MustParse("8f1c6f1e-2b7a-4f0e-9c3d-5a9e74d21b40")

// Conflict is a detected infeasibility or risk in the current booking set.
// Exactly one of the detail payloads is set, keyed by Kind.
type Conflict struct {
	ID             uuid.UUID            `json:"id"`
	Kind           ConflictKind         `json:"kind"`
	Severity       Severity             `json:"severity"`
	BookingIDs     []uuid.UUID          `json:"booking_ids"`
	Capacity       *CapacityDetail      `json:"capacity,omitempty"`
	DoubleBooking  *DoubleBookingDetail `json:"double_booking,omitempty"`
	Congestion     *CongestionDetail    `json:"congestion,omitempty"`
	Resolutions    []Resolution         `json:"resolutions"`
	AutoResolvable bool                 `json:"auto_resolvable"`
	DetectedAt     time.Time            `json:"detected_at"`
}

// CapacityDetail describes a party that does not fit its table, or any table.
type CapacityDetail struct {
	Reason           string     `json:"reason"`
	GuestCount       int        `json:"guest_count"`
	TableID          *uuid.UUID `json:"table_id,omitempty"`
	TableCapacity    int        `json:"table_capacity,omitempty"`
	MaxTableCapacity int        `json:"max_table_capacity"`
}

// DoubleBookingDetail describes two confirmed bookings holding the same table
// at overlapping times. The overlap range is half-open.
type DoubleBookingDetail struct {
	TableID      uuid.UUID `json:"table_id"`
	Date         string    `json:"date"`
	OverlapStart string    `json:"overlap_start"`
	OverlapEnd   string    `json:"overlap_end"`
}

// CongestionDetail describes a 30-minute slot with too many simultaneous
// arrivals. Advisory only; congestion never blocks a booking.
type CongestionDetail struct {
	Date         string `json:"date"`
	SlotStart    string `json:"slot_start"`
	BookingCount int    `json:"booking_count"`
	GuestTotal   int    `json:"guest_total"`
}

type ResolutionKind string

const (
	ResolutionReassignTable      ResolutionKind = "reassign_table"
	ResolutionSplitParty         ResolutionKind = "split_party"
	ResolutionReschedule         ResolutionKind = "reschedule"
	ResolutionDistributeBookings ResolutionKind = "distribute_bookings"
)

type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactModerate Impact = "moderate"
	ImpactHigh     Impact = "high"
)

// Resolution is a suggested corrective action. Exactly one of the parameter
// payloads is set, keyed by Kind.
type Resolution struct {
	ID             uuid.UUID         `json:"id"`
	Kind           ResolutionKind    `json:"kind"`
	Description    string            `json:"description"`
	Impact         Impact            `json:"impact"`
	Confidence     int               `json:"confidence"`
	Satisfaction   int               `json:"estimated_satisfaction"`
	AutoResolvable bool              `json:"auto_resolvable"`
	Reassign       *ReassignParams   `json:"reassign,omitempty"`
	Split          *SplitParams      `json:"split,omitempty"`
	Reschedule     *RescheduleParams `json:"reschedule,omitempty"`
	Distribute     *DistributeParams `json:"distribute,omitempty"`
}

type ReassignParams struct {
	BookingID      uuid.UUID `json:"booking_id"`
	TargetTableID  uuid.UUID `json:"target_table_id"`
	TargetCapacity int       `json:"target_capacity"`
}

type SplitParams struct {
	BookingID            uuid.UUID `json:"booking_id"`
	TablesNeeded         int       `json:"tables_needed"`
	RequiresCompensation bool      `json:"requires_compensation"`
}

type RescheduleParams struct {
	BookingID uuid.UUID `json:"booking_id"`
	TableID   uuid.UUID `json:"table_id"`
}

type DistributeParams struct {
	Date           string   `json:"date"`
	Slot           string   `json:"slot"`
	SuggestedSlots []string `json:"suggested_slots,omitempty"`
}

// conflictID derives a deterministic id from the conflict kind and the parts
// that identify it (booking ids, table, date, slot). Identical input
// reproduces identical ids so callers can diff consecutive runs.
func conflictID(kind ConflictKind, parts ...string) uuid.UUID {
	name := string(kind) + "|" + strings.Join(parts, "|")
	return uuid.NewSHA1(conflictNamespace, []byte(name))
}

// resolutionID derives a stable resolution id inside a conflict.
func resolutionID(conflict uuid.UUID, kind ResolutionKind) uuid.UUID {
	return uuid.NewSHA1(conflict, []byte(kind))
}

// BookingError attributes a malformed record to its booking so one corrupt
// row never aborts detection for the rest of the snapshot.
type BookingError struct {
	BookingID uuid.UUID `json:"booking_id"`
	Field     string    `json:"field"`
	Message   string    `json:"message"`
}

// Report is the result of one detection run. Conflicts are ordered: capacity
// first (by booking id), then double-bookings (by date, table, pair), then
// congestion (by date, slot).
type Report struct {
	Conflicts   []Conflict     `json:"conflicts"`
	Invalid     []BookingError `json:"invalid_bookings,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}
