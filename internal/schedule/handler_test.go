package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/reserve/pkg/event"
)

func newTestHandler(bookingRepo *MockBookingRepo, tableRepo *MockTableRepo, publisher *MockPublisher) *Handler {
	deps := HandlerDeps{
		Repos: Repos{
			BookingRepo: bookingRepo,
			TableRepo:   tableRepo,
		},
		Publisher: publisher,
	}
	return NewHandler(deps, apt.NewConfig(), apt.NewNoopLogger())
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name   string
		deps   HandlerDeps
		config *apt.Config
		logger apt.Logger
	}{
		{
			name: "withAllDependencies",
			deps: HandlerDeps{
				Repos:     Repos{BookingRepo: NewMockBookingRepo(), TableRepo: NewMockTableRepo()},
				Detector:  newTestDetector(),
				Estimator: NewEstimator(nil, DefaultThresholds()),
				Publisher: NewMockPublisher(),
			},
			config: apt.NewConfig(),
			logger: apt.NewNoopLogger(),
		},
		{
			name:   "withNilLogger",
			deps:   HandlerDeps{},
			config: apt.NewConfig(),
			logger: nil,
		},
		{
			name:   "withEmptyDeps",
			deps:   HandlerDeps{},
			config: nil,
			logger: apt.NewNoopLogger(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.deps, tt.config, tt.logger)
			if h == nil {
				t.Error("NewHandler() returned nil")
			}
		})
	}
}

func TestHandlerRegisterRoutes(t *testing.T) {
	h := NewHandler(HandlerDeps{}, nil, apt.NewNoopLogger())
	r := chi.NewRouter()

	// Should not panic
	h.RegisterRoutes(r)
}

func TestHandlerDetectConflicts(t *testing.T) {
	table := newTestTable("T1", 4)

	tests := []struct {
		name           string
		body           []byte
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "emptyBody",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedCount:  -1,
		},
		{
			name:           "invalidJSON",
			body:           []byte("{not json"),
			expectedStatus: http.StatusBadRequest,
			expectedCount:  -1,
		},
		{
			name: "validationFailure",
			body: mustMarshal(t, DetectRequest{
				Bookings: []*Booking{newTestBooking("2026-03-14", "19:00", "21:00", 0, StatusConfirmed)},
			}),
			expectedStatus: http.StatusBadRequest,
			expectedCount:  -1,
		},
		{
			name: "cleanSnapshot",
			body: mustMarshal(t, DetectRequest{
				Bookings: []*Booking{assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID)},
				Tables:   []*Table{table},
			}),
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name: "doubleBooking",
			body: mustMarshal(t, DetectRequest{
				Bookings: []*Booking{
					assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID),
					assignedBooking("2026-03-14", "20:00", "22:00", 2, StatusConfirmed, table.ID),
				},
				Tables: []*Table{table},
			}),
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(NewMockBookingRepo(), NewMockTableRepo(), NewMockPublisher())

			req := httptest.NewRequest(http.MethodPost, "/conflicts/detect", bytes.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.DetectConflicts(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("DetectConflicts() status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedCount >= 0 {
				conflicts := decodeConflicts(t, w.Body.Bytes())
				if len(conflicts) != tt.expectedCount {
					t.Errorf("conflicts count = %d, want %d", len(conflicts), tt.expectedCount)
				}
			}
		})
	}
}

func TestHandlerDetectConflictsPublishesEvent(t *testing.T) {
	table := newTestTable("T1", 4)
	publisher := NewMockPublisher()
	h := newTestHandler(NewMockBookingRepo(), NewMockTableRepo(), publisher)

	body := mustMarshal(t, DetectRequest{
		Bookings: []*Booking{
			assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID),
			assignedBooking("2026-03-14", "19:30", "20:30", 2, StatusConfirmed, table.ID),
		},
		Tables: []*Table{table},
	})

	req := httptest.NewRequest(http.MethodPost, "/conflicts/detect", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.DetectConflicts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("DetectConflicts() status = %d: %s", w.Code, w.Body.String())
	}

	published := publisher.Events()
	if len(published) != 1 {
		t.Fatalf("published events = %d, want 1", len(published))
	}
	if published[0].Topic != event.ScheduleConflictsTopic {
		t.Errorf("topic = %s, want %s", published[0].Topic, event.ScheduleConflictsTopic)
	}

	var evt event.ConflictsDetectedEvent
	if err := json.Unmarshal(published[0].Data, &evt); err != nil {
		t.Fatalf("cannot decode published event: %v", err)
	}
	if evt.EventType != event.EventConflictsDetected {
		t.Errorf("event type = %s, want %s", evt.EventType, event.EventConflictsDetected)
	}
	if evt.ConflictCount != 1 || evt.HighSeverity != 1 || evt.AutoResolvable != 1 {
		t.Errorf("event counts = %d/%d/%d, want 1/1/1", evt.ConflictCount, evt.HighSeverity, evt.AutoResolvable)
	}
}

func TestHandlerDetectConflictsNoEventWithoutConflicts(t *testing.T) {
	table := newTestTable("T1", 4)
	publisher := NewMockPublisher()
	h := newTestHandler(NewMockBookingRepo(), NewMockTableRepo(), publisher)

	body := mustMarshal(t, DetectRequest{
		Bookings: []*Booking{assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID)},
		Tables:   []*Table{table},
	})

	req := httptest.NewRequest(http.MethodPost, "/conflicts/detect", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.DetectConflicts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("DetectConflicts() status = %d: %s", w.Code, w.Body.String())
	}
	if got := publisher.Events(); len(got) != 0 {
		t.Errorf("published events = %d, want 0 for a clean snapshot", len(got))
	}
}

func TestHandlerListConflicts(t *testing.T) {
	table := newTestTable("T5", 4)

	tests := []struct {
		name           string
		query          string
		setupBookings  func(*MockBookingRepo)
		setupTables    func(*MockTableRepo)
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "missingDate",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  -1,
		},
		{
			name:           "malformedDate",
			query:          "?date=14-03-2026",
			expectedStatus: http.StatusBadRequest,
			expectedCount:  -1,
		},
		{
			name:  "bookingRepoFailure",
			query: "?date=2026-03-14",
			setupBookings: func(r *MockBookingRepo) {
				r.ListByDateFunc = func(ctx context.Context, date string) ([]*Booking, error) {
					return nil, errors.New("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCount:  -1,
		},
		{
			name:  "tableRepoFailure",
			query: "?date=2026-03-14",
			setupTables: func(r *MockTableRepo) {
				r.ListFunc = func(ctx context.Context) ([]*Table, error) {
					return nil, errors.New("database error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCount:  -1,
		},
		{
			name:  "quietDay",
			query: "?date=2026-03-14",
			setupBookings: func(r *MockBookingRepo) {
				r.AddBooking(assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID))
			},
			setupTables: func(r *MockTableRepo) {
				r.AddTable(table)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:  "conflictedDay",
			query: "?date=2026-03-14",
			setupBookings: func(r *MockBookingRepo) {
				r.AddBooking(assignedBooking("2026-03-14", "19:00", "21:00", 2, StatusConfirmed, table.ID))
				r.AddBooking(assignedBooking("2026-03-14", "20:00", "22:00", 2, StatusConfirmed, table.ID))
			},
			setupTables: func(r *MockTableRepo) {
				r.AddTable(table)
			},
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := NewMockBookingRepo()
			tableRepo := NewMockTableRepo()
			if tt.setupBookings != nil {
				tt.setupBookings(bookingRepo)
			}
			if tt.setupTables != nil {
				tt.setupTables(tableRepo)
			}

			h := newTestHandler(bookingRepo, tableRepo, NewMockPublisher())

			req := httptest.NewRequest(http.MethodGet, "/conflicts"+tt.query, nil)
			w := httptest.NewRecorder()

			h.ListConflicts(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("ListConflicts() status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedCount >= 0 {
				conflicts := decodeConflicts(t, w.Body.Bytes())
				if len(conflicts) != tt.expectedCount {
					t.Errorf("conflicts count = %d, want %d", len(conflicts), tt.expectedCount)
				}
			}
		})
	}
}

func TestHandlerGetAvailability(t *testing.T) {
	table := newTestTable("T1", 10)

	tests := []struct {
		name           string
		query          string
		setupBookings  func(*MockBookingRepo)
		expectedStatus int
		expectedTier   Tier
	}{
		{
			name:           "missingDate",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformedSlot",
			query:          "?date=2026-03-14&slot=7pm",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "emptyDayIsHigh",
			query:          "?date=2026-03-14",
			expectedStatus: http.StatusOK,
			expectedTier:   TierHigh,
		},
		{
			name:  "busySlotIsLow",
			query: "?date=2026-03-14&slot=19:00",
			setupBookings: func(r *MockBookingRepo) {
				r.AddBooking(assignedBooking("2026-03-14", "19:00", "21:00", 8, StatusConfirmed, table.ID))
			},
			expectedStatus: http.StatusOK,
			expectedTier:   TierLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := NewMockBookingRepo()
			tableRepo := NewMockTableRepo()
			tableRepo.AddTable(table)
			if tt.setupBookings != nil {
				tt.setupBookings(bookingRepo)
			}

			h := newTestHandler(bookingRepo, tableRepo, NewMockPublisher())

			req := httptest.NewRequest(http.MethodGet, "/availability"+tt.query, nil)
			w := httptest.NewRecorder()

			h.GetAvailability(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("GetAvailability() status = %d, want %d: %s", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp map[string]json.RawMessage
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("cannot decode response: %v", err)
				}
				var data AvailabilityResponse
				if err := json.Unmarshal(resp["data"], &data); err != nil {
					t.Fatalf("cannot decode availability payload: %v", err)
				}
				if data.Tier != tt.expectedTier {
					t.Errorf("tier = %s, want %s", data.Tier, tt.expectedTier)
				}
				if data.TotalCapacity != table.Capacity {
					t.Errorf("total capacity = %d, want %d", data.TotalCapacity, table.Capacity)
				}
			}
		})
	}
}

func TestHandlerGetAvailabilityNoTables(t *testing.T) {
	h := newTestHandler(NewMockBookingRepo(), NewMockTableRepo(), NewMockPublisher())

	req := httptest.NewRequest(http.MethodGet, "/availability?date=2026-03-14", nil)
	w := httptest.NewRecorder()
	h.GetAvailability(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GetAvailability() status = %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	var data AvailabilityResponse
	if err := json.Unmarshal(resp["data"], &data); err != nil {
		t.Fatalf("cannot decode availability payload: %v", err)
	}
	if data.Tier != TierUnavailable {
		t.Errorf("tier = %s, want %s", data.Tier, TierUnavailable)
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("cannot marshal test payload: %v", err)
	}
	return data
}

func decodeConflicts(t *testing.T, body []byte) []json.RawMessage {
	t.Helper()
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("cannot decode response envelope: %v", err)
	}

	var report struct {
		Conflicts []json.RawMessage `json:"conflicts"`
	}
	if err := json.Unmarshal(resp["data"], &report); err != nil {
		t.Fatalf("cannot decode report: %v", err)
	}
	return report.Conflicts
}
