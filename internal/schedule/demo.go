package schedule

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const reserveDemoSeedApplication = "reserve_demo"

// ApplyDemoSeeds creates demo bookings for today, including a deliberate
// double-booking and an oversize party so the conflict dashboard has
// something to show out of the box. It applies the standard table seeds
// first so the demo bookings have tables to land on.
func ApplyDemoSeeds(ctx context.Context, repos Repos, db *mongo.Database, seedFS embed.FS, logger apt.Logger) error {
	if db == nil {
		return errors.New("database is required for demo seeding")
	}

	if err := ApplyTableSeeds(ctx, repos.TableRepo, seedFS, logger); err != nil {
		return fmt.Errorf("apply standard table seeds: %w", err)
	}

	tracker := seed.NewMongoTracker(db)

	demoSeeds := []seed.Seed{
		{
			ID:          "2025-01-12_demo_bookings_v1",
			Description: "Create demo bookings with a double-booking and an oversize party",
			Run: func(ctx context.Context) error {
				return seedDemoBookings(ctx, repos, logger)
			},
		},
	}

	logger.Info("Applying demo booking seeds")
	if err := seed.Apply(ctx, tracker, demoSeeds, reserveDemoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo booking seeds applied successfully")
	return nil
}

func seedDemoBookings(ctx context.Context, repos Repos, logger apt.Logger) error {
	tables, err := repos.TableRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	if len(tables) < 2 {
		return fmt.Errorf("need at least 2 tables for demo bookings, found %d", len(tables))
	}

	today := time.Now().Format("2006-01-02")
	first, second := tables[0], tables[1]

	demo := []struct {
		start   string
		end     string
		guests  int
		tableID *uuid.UUID
		contact string
	}{
		// Clean booking, fits its table.
		{start: "18:00", end: "19:30", guests: 2, tableID: &first.ID, contact: "Ada Sorensen"},
		// Two bookings holding the same table at overlapping times.
		{start: "19:00", end: "21:00", guests: 4, tableID: &second.ID, contact: "Marcus Webb"},
		{start: "20:00", guests: 3, tableID: &second.ID, contact: "Priya Nair"},
		// A party no single table fits, left unassigned.
		{start: "19:30", end: "22:00", guests: 40, contact: "Riverside Rowing Club"},
	}

	for _, d := range demo {
		booking := NewBooking()
		booking.Date = today
		booking.StartTime = d.start
		booking.EndTime = d.end
		booking.GuestCount = d.guests
		booking.TableID = d.tableID
		booking.ContactName = d.contact
		booking.ContactInfo = "demo@appetite.club"
		booking.CreatedBy = "seed:demo"
		booking.UpdatedBy = "seed:demo"
		booking.BeforeCreate()

		if err := repos.BookingRepo.Create(ctx, booking); err != nil {
			return fmt.Errorf("create demo booking for %s: %w", d.contact, err)
		}
		logger.Info("Demo booking created", "contact", d.contact, "start", d.start, "id", booking.ID.String())
	}

	return nil
}

// DemoSeedingFunc returns a lifecycle OnStart-compatible function which
// applies the demo booking seeds in the background.
func DemoSeedingFunc(seedCtx context.Context, repos Repos, db *mongo.Database, seedFS embed.FS, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo booking seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, repos, db, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Demo booking seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Demo booking seeding completed successfully")
			}
		}()
		return nil
	}
}
