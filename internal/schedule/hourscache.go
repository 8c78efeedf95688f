package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
)

// HoursCache caches the venue's weekly opening hours fetched from the venue
// service and answers OpeningHours lookups. When the cache was never warmed
// it fails open: availability stays advisory, never a gatekeeper.
type HoursCache struct {
	mu     sync.RWMutex
	week   map[time.Weekday][]hoursRange
	warmed bool
	client *apt.ServiceClient
	logger apt.Logger
}

type hoursRange struct {
	open  int
	close int
}

func NewHoursCache(client *apt.ServiceClient, logger apt.Logger) *HoursCache {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &HoursCache{
		week:   make(map[time.Weekday][]hoursRange),
		client: client,
		logger: logger,
	}
}

// Warm fetches the weekly schedule from the venue service.
func (c *HoursCache) Warm(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	resp, err := c.client.List(ctx, "opening-hours")
	if err != nil {
		return fmt.Errorf("failed to list opening hours: %w", err)
	}
	return c.ingestCollection(resp.Data)
}

// IsOpen implements OpeningHours. Ranges are half-open: a venue closing at
// 22:00 is closed at minute 22:00.
func (c *HoursCache) IsOpen(ctx context.Context, date string, minuteOfDay int) (bool, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("invalid date %q: %w", date, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.warmed {
		return true, nil
	}

	for _, r := range c.week[day.Weekday()] {
		if minuteOfDay >= r.open && minuteOfDay < r.close {
			return true, nil
		}
	}
	return false, nil
}

// Set replaces the ranges for one weekday.
func (c *HoursCache) Set(day time.Weekday, ranges []hoursRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.week[day] = ranges
	c.warmed = true
}

func (c *HoursCache) ingestCollection(data interface{}) error {
	var records []openingHoursDTO
	if err := rehydrate(data, &records); err != nil {
		return err
	}

	week := make(map[time.Weekday][]hoursRange)
	for _, record := range records {
		if record.DayOfWeek < 0 || record.DayOfWeek > 6 {
			c.logger.Debug("skipping invalid opening hours day", "day_of_week", record.DayOfWeek)
			continue
		}
		open, err := ToMinutes(record.Open)
		if err != nil {
			c.logger.Debug("skipping invalid opening time", "open", record.Open)
			continue
		}
		closeAt, err := ToMinutes(record.Close)
		if err != nil {
			c.logger.Debug("skipping invalid closing time", "close", record.Close)
			continue
		}
		day := time.Weekday(record.DayOfWeek)
		week[day] = append(week[day], hoursRange{open: open, close: closeAt})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.week = week
	c.warmed = true
	return nil
}

type openingHoursDTO struct {
	DayOfWeek int    `json:"day_of_week"`
	Open      string `json:"open"`
	Close     string `json:"close"`
}

func rehydrate(data interface{}, out interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
