package schedule

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// Booking is a reservation for a guest count at a date/time, optionally bound
// to a table. Date is a plain "YYYY-MM-DD" and times are wall-clock "HH:MM";
// the engine never interprets them as instants.
type Booking struct {
	ID          uuid.UUID  `json:"id" bson:"_id"`
	Date        string     `json:"date" bson:"date"`
	StartTime   string     `json:"start_time" bson:"start_time"`
	EndTime     string     `json:"end_time,omitempty" bson:"end_time,omitempty"`
	GuestCount  int        `json:"guest_count" bson:"guest_count"`
	TableID     *uuid.UUID `json:"table_id,omitempty" bson:"table_id,omitempty"`
	Status      string     `json:"status" bson:"status"`
	ContactName string     `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	ContactInfo string     `json:"contact_info,omitempty" bson:"contact_info,omitempty"`
	Notes       string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy   string     `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy   string     `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

func (b *Booking) GetID() uuid.UUID {
	return b.ID
}

func (b *Booking) ResourceType() string {
	return "booking"
}

func (b *Booking) SetID(id uuid.UUID) {
	b.ID = id
}

func NewBooking() *Booking {
	return &Booking{
		ID:     apt.GenerateNewID(),
		Status: StatusConfirmed,
	}
}

func (b *Booking) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = apt.GenerateNewID()
	}
}

func (b *Booking) BeforeCreate() {
	b.EnsureID()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
}

func (b *Booking) BeforeUpdate() {
	b.UpdatedAt = time.Now()
}

// CountsForCapacity reports whether the booking occupies seats for capacity
// purposes. Pending, completed and no-show bookings still count; only a
// cancellation releases the seats.
func (b *Booking) CountsForCapacity() bool {
	return b.Status != StatusCancelled
}

// IsConfirmed reports whether the booking participates in double-booking and
// congestion detection.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Assigned reports whether the booking is bound to a concrete table.
func (b *Booking) Assigned() bool {
	return b.TableID != nil && *b.TableID != uuid.Nil
}

func ValidBookingStatus(status string) bool {
	switch status {
	case StatusConfirmed, StatusPending, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}
