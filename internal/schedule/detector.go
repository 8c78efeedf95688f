package schedule

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Thresholds are the operator-tunable knobs of the detection passes.
type Thresholds struct {
	DefaultDurationMinutes int
	SlotMinutes            int
	CongestionMaxBookings  int
	CongestionMaxGuests    int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DefaultDurationMinutes: DefaultDurationMinutes,
		SlotMinutes:            30,
		CongestionMaxBookings:  5,
		CongestionMaxGuests:    50,
	}
}

// ThresholdsFromConfig overlays config values on the defaults. Keys:
// detector.default_duration_minutes, detector.slot_minutes,
// detector.congestion_max_bookings, detector.congestion_max_guests.
func ThresholdsFromConfig(config *apt.Config) Thresholds {
	t := DefaultThresholds()
	if config == nil {
		return t
	}

	overlay := func(key string, target *int) {
		if v, _ := config.GetString("detector." + key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*target = n
			}
		}
	}

	overlay("default_duration_minutes", &t.DefaultDurationMinutes)
	overlay("slot_minutes", &t.SlotMinutes)
	overlay("congestion_max_bookings", &t.CongestionMaxBookings)
	overlay("congestion_max_guests", &t.CongestionMaxGuests)

	return t
}

// Detector runs the three conflict passes over an immutable snapshot of
// bookings and tables. It holds no mutable state between runs and is safe
// for concurrent use.
type Detector struct {
	ranker     *Ranker
	thresholds Thresholds
	logger     apt.Logger
}

func NewDetector(ranker *Ranker, thresholds Thresholds, logger apt.Logger) *Detector {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if ranker == nil {
		ranker = NewRanker()
	}
	if thresholds.SlotMinutes <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Detector{
		ranker:     ranker,
		thresholds: thresholds,
		logger:     logger,
	}
}

// parsedBooking carries a booking with its resolved [start,end) range. ok is
// false when the time strings were malformed; such bookings still go through
// the time-independent capacity pass.
type parsedBooking struct {
	booking *Booking
	iv      interval
	ok      bool
}

// Detect runs the capacity, double-booking and congestion passes over the
// snapshot and returns the merged, deterministically ordered report. It is a
// pure function of its inputs aside from the report timestamps.
func (d *Detector) Detect(ctx context.Context, bookings []*Booking, tables []*Table) *Report {
	now := time.Now().UTC()
	inv := NewInventory(tables)

	parsed := make([]parsedBooking, 0, len(bookings))
	var invalid []BookingError

	for _, b := range bookings {
		if b == nil {
			continue
		}
		iv, err := parseInterval(b, d.thresholds.DefaultDurationMinutes)
		if err != nil {
			field := "start_time"
			if _, startErr := ToMinutes(b.StartTime); startErr == nil {
				field = "end_time"
			}
			invalid = append(invalid, BookingError{
				BookingID: b.ID,
				Field:     field,
				Message:   err.Error(),
			})
			parsed = append(parsed, parsedBooking{booking: b})
			continue
		}
		parsed = append(parsed, parsedBooking{booking: b, iv: iv, ok: true})
	}

	sort.Slice(invalid, func(i, j int) bool {
		return invalid[i].BookingID.String() < invalid[j].BookingID.String()
	})

	// The passes are independent and read-only over the snapshot; run them
	// in parallel and merge in a fixed order.
	var capacity, double, congestion []Conflict
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		capacity = d.capacityPass(parsed, inv, now)
	}()
	go func() {
		defer wg.Done()
		double = d.doubleBookingPass(parsed, now)
	}()
	go func() {
		defer wg.Done()
		congestion = d.congestionPass(parsed, now)
	}()
	wg.Wait()

	conflicts := make([]Conflict, 0, len(capacity)+len(double)+len(congestion))
	conflicts = append(conflicts, capacity...)
	conflicts = append(conflicts, double...)
	conflicts = append(conflicts, congestion...)

	d.logger.Debug("detection run completed",
		"bookings", len(bookings),
		"tables", inv.Len(),
		"conflicts", len(conflicts),
		"invalid", len(invalid),
	)

	return &Report{
		Conflicts:   conflicts,
		Invalid:     invalid,
		GeneratedAt: now,
	}
}

// capacityPass flags every non-cancelled booking whose party does not fit its
// assigned table, or any table at all when unassigned. Time-independent, so
// bookings with malformed times are still checked.
func (d *Detector) capacityPass(parsed []parsedBooking, inv *Inventory, now time.Time) []Conflict {
	var conflicts []Conflict

	for _, pb := range parsed {
		b := pb.booking
		if !b.CountsForCapacity() {
			continue
		}

		var detail *CapacityDetail
		if b.Assigned() {
			// An assigned table missing from the inventory seats nobody;
			// report it as too small rather than dropping the booking.
			capacity, _ := inv.CapacityOf(*b.TableID)
			if b.GuestCount <= capacity {
				continue
			}
			detail = &CapacityDetail{
				Reason:           ReasonAssignedTableTooSmall,
				GuestCount:       b.GuestCount,
				TableID:          b.TableID,
				TableCapacity:    capacity,
				MaxTableCapacity: inv.MaxCapacity(),
			}
		} else {
			if b.GuestCount <= inv.MaxCapacity() {
				continue
			}
			detail = &CapacityDetail{
				Reason:           ReasonNoSuitableTable,
				GuestCount:       b.GuestCount,
				MaxTableCapacity: inv.MaxCapacity(),
			}
		}

		id := conflictID(ConflictCapacityExceeded, b.ID.String())
		conflict := Conflict{
			ID:         id,
			Kind:       ConflictCapacityExceeded,
			Severity:   SeverityHigh,
			BookingIDs: []uuid.UUID{b.ID},
			Capacity:   detail,
			DetectedAt: now,
		}

		if b.GuestCount > inv.MaxCapacity() {
			// No single table fits the party; splitting is the only option,
			// and only when there is an inventory to split across.
			if maxCap := inv.MaxCapacity(); maxCap > 0 {
				res := d.newResolution(id, ResolutionSplitParty,
					fmt.Sprintf("Split the party of %d across %d tables", b.GuestCount, ceilDiv(b.GuestCount, maxCap)))
				res.Split = &SplitParams{
					BookingID:            b.ID,
					TablesNeeded:         ceilDiv(b.GuestCount, maxCap),
					RequiresCompensation: true,
				}
				conflict.Resolutions = append(conflict.Resolutions, res)
			}
		} else if target, ok := inv.SmallestFitting(b.GuestCount, b.TableID); ok {
			res := d.newResolution(id, ResolutionReassignTable,
				fmt.Sprintf("Reassign to table %s (seats %d)", target.Number, target.Capacity))
			res.Reassign = &ReassignParams{
				BookingID:      b.ID,
				TargetTableID:  target.ID,
				TargetCapacity: target.Capacity,
			}
			conflict.Resolutions = append(conflict.Resolutions, res)
			conflict.AutoResolvable = true
		}

		conflicts = append(conflicts, conflict)
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].BookingIDs[0].String() < conflicts[j].BookingIDs[0].String()
	})
	return conflicts
}

// doubleBookingPass flags every pair of confirmed bookings holding the same
// table at overlapping times on the same date. Pairwise comparison per table
// is O(b²); fine at per-venue daily volumes.
func (d *Detector) doubleBookingPass(parsed []parsedBooking, now time.Time) []Conflict {
	byTable := make(map[uuid.UUID][]parsedBooking)
	for _, pb := range parsed {
		if !pb.ok || !pb.booking.IsConfirmed() || !pb.booking.Assigned() {
			continue
		}
		byTable[*pb.booking.TableID] = append(byTable[*pb.booking.TableID], pb)
	}

	var conflicts []Conflict
	for tableID, group := range byTable {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				first, second := group[i], group[j]
				if first.booking.Date != second.booking.Date {
					continue
				}
				if !Overlaps(first.iv.start, first.iv.end, second.iv.start, second.iv.end) {
					continue
				}

				// The later arrival is the one asked to move; ties break on id.
				if second.iv.start < first.iv.start ||
					(second.iv.start == first.iv.start && second.booking.ID.String() < first.booking.ID.String()) {
					first, second = second, first
				}

				idA, idB := first.booking.ID.String(), second.booking.ID.String()
				if idB < idA {
					idA, idB = idB, idA
				}
				id := conflictID(ConflictDoubleBooking, first.booking.Date, tableID.String(), idA, idB)

				res := d.newResolution(id, ResolutionReschedule,
					fmt.Sprintf("Reschedule booking %s to a free time on %s", second.booking.ID, second.booking.Date))
				res.Reschedule = &RescheduleParams{
					BookingID: second.booking.ID,
					TableID:   tableID,
				}

				conflicts = append(conflicts, Conflict{
					ID:         id,
					Kind:       ConflictDoubleBooking,
					Severity:   SeverityHigh,
					BookingIDs: []uuid.UUID{first.booking.ID, second.booking.ID},
					DoubleBooking: &DoubleBookingDetail{
						TableID:      tableID,
						Date:         first.booking.Date,
						OverlapStart: FormatMinutes(max(first.iv.start, second.iv.start)),
						OverlapEnd:   FormatMinutes(min(first.iv.end, second.iv.end)),
					},
					Resolutions:    []Resolution{res},
					AutoResolvable: true,
					DetectedAt:     now,
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.DoubleBooking.Date != b.DoubleBooking.Date {
			return a.DoubleBooking.Date < b.DoubleBooking.Date
		}
		if a.DoubleBooking.TableID != b.DoubleBooking.TableID {
			return a.DoubleBooking.TableID.String() < b.DoubleBooking.TableID.String()
		}
		return a.ID.String() < b.ID.String()
	})
	return conflicts
}

// congestionPass buckets confirmed bookings into fixed slots by start time
// and flags buckets with too many parties or guests arriving at once.
func (d *Detector) congestionPass(parsed []parsedBooking, now time.Time) []Conflict {
	type slotKey struct {
		date string
		slot int
	}
	type slotLoad struct {
		bookings []*Booking
		guests   int
	}

	buckets := make(map[slotKey]*slotLoad)
	for _, pb := range parsed {
		if !pb.ok || !pb.booking.IsConfirmed() {
			continue
		}
		key := slotKey{
			date: pb.booking.Date,
			slot: (pb.iv.start / d.thresholds.SlotMinutes) * d.thresholds.SlotMinutes,
		}
		load := buckets[key]
		if load == nil {
			load = &slotLoad{}
			buckets[key] = load
		}
		load.bookings = append(load.bookings, pb.booking)
		load.guests += pb.booking.GuestCount
	}

	var conflicts []Conflict
	for key, load := range buckets {
		if len(load.bookings) <= d.thresholds.CongestionMaxBookings &&
			load.guests <= d.thresholds.CongestionMaxGuests {
			continue
		}

		slot := FormatMinutes(key.slot)
		id := conflictID(ConflictTimeOverlapCongestion, key.date, slot)

		ids := make([]uuid.UUID, 0, len(load.bookings))
		for _, b := range load.bookings {
			ids = append(ids, b.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		res := d.newResolution(id, ResolutionDistributeBookings,
			fmt.Sprintf("Spread the %s arrivals on %s across neighboring slots", slot, key.date))
		res.Distribute = &DistributeParams{
			Date:           key.date,
			Slot:           slot,
			SuggestedSlots: neighborSlots(key.slot, d.thresholds.SlotMinutes),
		}

		conflicts = append(conflicts, Conflict{
			ID:         id,
			Kind:       ConflictTimeOverlapCongestion,
			Severity:   SeverityMedium,
			BookingIDs: ids,
			Congestion: &CongestionDetail{
				Date:         key.date,
				SlotStart:    slot,
				BookingCount: len(load.bookings),
				GuestTotal:   load.guests,
			},
			Resolutions: []Resolution{res},
			DetectedAt:  now,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Congestion.Date != b.Congestion.Date {
			return a.Congestion.Date < b.Congestion.Date
		}
		return a.Congestion.SlotStart < b.Congestion.SlotStart
	})
	return conflicts
}

func (d *Detector) newResolution(conflict uuid.UUID, kind ResolutionKind, description string) Resolution {
	score := d.ranker.Score(kind)
	return Resolution{
		ID:             resolutionID(conflict, kind),
		Kind:           kind,
		Description:    description,
		Impact:         score.Impact,
		Confidence:     score.Confidence,
		Satisfaction:   score.Satisfaction,
		AutoResolvable: score.AutoResolvable,
	}
}

func neighborSlots(slot, width int) []string {
	var slots []string
	if prev := slot - width; prev >= 0 {
		slots = append(slots, FormatMinutes(prev))
	}
	if next := slot + width; next < 24*60 {
		slots = append(slots, FormatMinutes(next))
	}
	return slots
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
