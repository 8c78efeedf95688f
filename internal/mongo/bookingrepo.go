package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appetiteclub/reserve/internal/schedule"
)

type BookingRepo struct {
	collection *mongo.Collection
}

func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{
		collection: db.Collection("bookings"),
	}
}

func (r *BookingRepo) Create(ctx context.Context, booking *schedule.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking is nil")
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("cannot create booking: %w", err)
	}

	return nil
}

func (r *BookingRepo) List(ctx context.Context) ([]*schedule.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*schedule.Booking
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode bookings: %w", err)
	}

	return result, nil
}

func (r *BookingRepo) ListByDate(ctx context.Context, date string) ([]*schedule.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("cannot list bookings by date: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*schedule.Booking
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode bookings: %w", err)
	}

	return result, nil
}
