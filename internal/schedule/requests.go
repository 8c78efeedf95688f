package schedule

// DetectRequest is the snapshot a caller submits for an ad-hoc detection run.
// Collections are order-irrelevant; the report ordering is deterministic.
type DetectRequest struct {
	Bookings []*Booking `json:"bookings"`
	Tables   []*Table   `json:"tables"`
}

// AvailabilityResponse is the tier for a date, optionally narrowed to a slot.
type AvailabilityResponse struct {
	Date          string `json:"date"`
	Slot          string `json:"slot,omitempty"`
	Tier          Tier   `json:"tier"`
	TotalCapacity int    `json:"total_capacity"`
}
