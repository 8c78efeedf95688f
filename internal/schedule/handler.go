package schedule

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/reserve/internal/cache"
	"github.com/appetiteclub/reserve/internal/monitoring"
	"github.com/appetiteclub/reserve/pkg/event"
)

const MaxBodyBytes = 1 << 20

const conflictEventSource = "reserve-service"

type Handler struct {
	bookingRepo  BookingRepo
	tableRepo    TableRepo
	detector     *Detector
	estimator    *Estimator
	availability *cache.Availability
	publisher    events.Publisher
	logger       apt.Logger
	config       *apt.Config
	tlm          *telemetry.HTTP
}

type HandlerDeps struct {
	Repos        Repos
	Detector     *Detector
	Estimator    *Estimator
	Availability *cache.Availability
	Publisher    events.Publisher
}

type Repos struct {
	BookingRepo BookingRepo
	TableRepo   TableRepo
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	detector := hd.Detector
	if detector == nil {
		detector = NewDetector(nil, DefaultThresholds(), logger)
	}

	estimator := hd.Estimator
	if estimator == nil {
		estimator = NewEstimator(nil, DefaultThresholds())
	}

	return &Handler{
		bookingRepo:  hd.Repos.BookingRepo,
		tableRepo:    hd.Repos.TableRepo,
		detector:     detector,
		estimator:    estimator,
		availability: hd.Availability,
		publisher:    hd.Publisher,
		logger:       logger,
		config:       config,
		tlm:          telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conflicts", func(r chi.Router) {
		r.Post("/detect", h.DetectConflicts)
		r.Get("/", h.ListConflicts)
	})

	r.Get("/availability", h.GetAvailability)
}

// DetectConflicts runs the engine over a snapshot supplied in the request
// body. Nothing is persisted; conflicts are recomputed fresh per call.
func (h *Handler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DetectConflicts")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	req, ok := h.decodeDetectPayload(w, r, log)
	if !ok {
		return
	}

	validationErrors := ValidateDetectRequest(ctx, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		monitoring.TrackDetectionRejected("api")
		apt.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	started := time.Now()
	report := h.detector.Detect(ctx, req.Bookings, req.Tables)
	monitoring.TrackDetection("api", kindCounts(report), len(report.Invalid), time.Since(started))

	h.publishConflictsDetected(ctx, "", report)

	apt.RespondSuccess(w, report)
}

// ListConflicts detects against the persisted snapshot for a date.
func (h *Handler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListConflicts")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	if date == "" || !validDate(date) {
		log.Debug("invalid date parameter", "date", date)
		apt.RespondError(w, http.StatusBadRequest, "Query parameter date must be YYYY-MM-DD")
		return
	}

	bookings, err := h.bookingRepo.ListByDate(ctx, date)
	if err != nil {
		log.Error("cannot load bookings", "error", err, "date", date)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load bookings")
		return
	}

	tables, err := h.tableRepo.List(ctx)
	if err != nil {
		log.Error("cannot load tables", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load tables")
		return
	}

	started := time.Now()
	report := h.detector.Detect(ctx, bookings, tables)
	monitoring.TrackDetection("store", kindCounts(report), len(report.Invalid), time.Since(started))

	h.publishConflictsDetected(ctx, date, report)

	apt.RespondSuccess(w, report)
}

// GetAvailability returns the availability tier for a date, optionally
// narrowed to a slot. Responses are served from the Redis cache when fresh.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetAvailability")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	date := r.URL.Query().Get("date")
	slot := r.URL.Query().Get("slot")

	validationErrors := ValidateAvailabilityQuery(ctx, date, slot)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		apt.RespondError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	if cached, ok := h.availability.Get(ctx, date, slot); ok {
		var resp AvailabilityResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			monitoring.TrackAvailability("cache")
			apt.RespondSuccess(w, resp)
			return
		}
		log.Debug("dropping undecodable availability cache entry", "date", date, "slot", slot)
	}

	bookings, err := h.bookingRepo.ListByDate(ctx, date)
	if err != nil {
		log.Error("cannot load bookings", "error", err, "date", date)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load bookings")
		return
	}

	tables, err := h.tableRepo.List(ctx)
	if err != nil {
		log.Error("cannot load tables", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load tables")
		return
	}

	inv := NewInventory(tables)
	tier, err := h.estimator.Estimate(ctx, date, slot, bookings, inv.TotalCapacity())
	if err != nil {
		log.Error("cannot estimate availability", "error", err, "date", date, "slot", slot)
		apt.RespondError(w, http.StatusInternalServerError, "Could not estimate availability")
		return
	}

	resp := AvailabilityResponse{
		Date:          date,
		Slot:          slot,
		Tier:          tier,
		TotalCapacity: inv.TotalCapacity(),
	}

	if payload, err := json.Marshal(resp); err == nil {
		h.availability.Set(ctx, date, slot, string(payload))
	}
	monitoring.TrackAvailability("computed")

	apt.RespondSuccess(w, resp)
}

func (h *Handler) publishConflictsDetected(ctx context.Context, date string, report *Report) {
	if h.publisher == nil || report == nil || len(report.Conflicts) == 0 {
		return
	}

	evt := event.ConflictsDetectedEvent{
		EventType:     event.EventConflictsDetected,
		Date:          date,
		ConflictCount: len(report.Conflicts),
		Source:        conflictEventSource,
		OccurredAt:    time.Now().UTC(),
	}
	for _, c := range report.Conflicts {
		evt.ConflictIDs = append(evt.ConflictIDs, c.ID.String())
		if c.Severity == SeverityHigh {
			evt.HighSeverity++
		}
		if c.AutoResolvable {
			evt.AutoResolvable++
		}
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("cannot marshal conflicts event", "error", err, "date", date)
		return
	}

	if err := h.publisher.Publish(ctx, event.ScheduleConflictsTopic, payload); err != nil {
		h.logger.Error("cannot publish conflicts event", "error", err, "date", date)
	}
}

// Helper methods

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) decodeDetectPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (DetectRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return DetectRequest{}, false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		apt.RespondError(w, http.StatusBadRequest, "Request body is empty")
		return DetectRequest{}, false
	}

	var req DetectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Debug("error decoding JSON", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return DetectRequest{}, false
	}

	return req, true
}

func kindCounts(report *Report) map[string]int {
	counts := make(map[string]int, 3)
	for _, c := range report.Conflicts {
		counts[string(c.Kind)]++
	}
	return counts
}
