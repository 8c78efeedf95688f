package schedule

import (
	"context"
	"sync"

	"github.com/appetiteclub/apt/events"
)

// MockBookingRepo is a test mock for BookingRepo
type MockBookingRepo struct {
	bookings       []*Booking
	CreateFunc     func(ctx context.Context, booking *Booking) error
	ListFunc       func(ctx context.Context) ([]*Booking, error)
	ListByDateFunc func(ctx context.Context, date string) ([]*Booking, error)
}

func NewMockBookingRepo() *MockBookingRepo {
	return &MockBookingRepo{}
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *MockBookingRepo) List(ctx context.Context) ([]*Booking, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return m.bookings, nil
}

func (m *MockBookingRepo) ListByDate(ctx context.Context, date string) ([]*Booking, error) {
	if m.ListByDateFunc != nil {
		return m.ListByDateFunc(ctx, date)
	}
	var result []*Booking
	for _, b := range m.bookings {
		if b.Date == date {
			result = append(result, b)
		}
	}
	return result, nil
}

// AddBooking is a helper to seed the mock repository
func (m *MockBookingRepo) AddBooking(b *Booking) {
	m.bookings = append(m.bookings, b)
}

// MockTableRepo is a test mock for TableRepo
type MockTableRepo struct {
	tables     []*Table
	CreateFunc func(ctx context.Context, table *Table) error
	ListFunc   func(ctx context.Context) ([]*Table, error)
}

func NewMockTableRepo() *MockTableRepo {
	return &MockTableRepo{}
}

func (m *MockTableRepo) Create(ctx context.Context, table *Table) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, table)
	}
	m.tables = append(m.tables, table)
	return nil
}

func (m *MockTableRepo) List(ctx context.Context) ([]*Table, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return m.tables, nil
}

// AddTable is a helper to seed the mock repository
func (m *MockTableRepo) AddTable(t *Table) {
	m.tables = append(m.tables, t)
}

// PublishedEvent captures a single Publish call
type PublishedEvent struct {
	Topic string
	Data  []byte
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu              sync.Mutex
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent(nil), m.PublishedEvents...)
}

// MockSubscriber is a test mock for events.Subscriber
type MockSubscriber struct {
	Handlers map[string]events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{Handlers: make(map[string]events.HandlerFunc)}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.Handlers[topic] = handler
	return nil
}

func (m *MockSubscriber) Close() error {
	return nil
}

// fakeHours is a canned OpeningHours lookup
type fakeHours struct {
	open bool
	err  error
}

func (f *fakeHours) IsOpen(ctx context.Context, date string, minuteOfDay int) (bool, error) {
	return f.open, f.err
}
