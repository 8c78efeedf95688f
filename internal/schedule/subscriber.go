package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/reserve/internal/cache"
	"github.com/appetiteclub/reserve/pkg/event"
)

// ReservationChangeSubscriber drops cached availability for a date whenever
// the table service mutates a booking on it. The engine itself stays
// stateless; only the presentational cache reacts to change notifications.
type ReservationChangeSubscriber struct {
	subscriber   events.Subscriber
	availability *cache.Availability
	logger       apt.Logger
}

func NewReservationChangeSubscriber(subscriber events.Subscriber, availability *cache.Availability, logger apt.Logger) *ReservationChangeSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &ReservationChangeSubscriber{
		subscriber:   subscriber,
		availability: availability,
		logger:       logger,
	}
}

func (s *ReservationChangeSubscriber) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return nil
	}

	s.logger.Info("Starting ReservationChangeSubscriber for topic: " + event.ReservationChangesTopic)

	if err := s.subscriber.Subscribe(ctx, event.ReservationChangesTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.ReservationChangesTopic, err)
	}

	return nil
}

func (s *ReservationChangeSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.ReservationChangedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Errorf("Failed to unmarshal reservation event: %v", err)
		return nil
	}

	if evt.Date == "" {
		return nil
	}

	if err := s.availability.InvalidateDate(ctx, evt.Date); err != nil {
		s.logger.Errorf("Failed to invalidate availability for %s: %v", evt.Date, err)
		return err
	}

	s.logger.Debug("invalidated availability cache", "date", evt.Date, "reservation_id", evt.ReservationID)
	return nil
}
