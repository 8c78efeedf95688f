package schedule

import (
	"context"
)

// BookingRepo is the read side of the booking store owned by the table
// service. The reserve service consumes snapshots; it never mutates bookings
// outside of demo seeding.
type BookingRepo interface {
	Create(ctx context.Context, booking *Booking) error
	List(ctx context.Context) ([]*Booking, error)
	ListByDate(ctx context.Context, date string) ([]*Booking, error)
}

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	List(ctx context.Context) ([]*Table, error)
}
