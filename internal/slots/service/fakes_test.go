package service

import (
	"context"
	"errors"
	"sync"

	"lilo/pkg/model"
)

type stubRules struct {
	rules []*model.AvailabilityRule
	err   error
	calls int
}

func (s *stubRules) FindAvailableByWeekday(_ context.Context, day model.Weekday) ([]*model.AvailabilityRule, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []*model.AvailabilityRule
	for _, r := range s.rules {
		if r.DayOfWeek == day && r.IsAvailable {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type stubBlocked map[string]bool

func (s stubBlocked) IsBlocked(_ context.Context, date string) (bool, error) {
	return s[date], nil
}

type stubOccupancy struct {
	mu    sync.Mutex
	times map[string][]string
}

func (s *stubOccupancy) FindOccupiedTimes(_ context.Context, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.times[date]...), nil
}

type memoryCache struct {
	entries map[string][]model.Slot
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]model.Slot)}
}

func (c *memoryCache) Get(_ context.Context, date string) ([]model.Slot, bool) {
	s, ok := c.entries[date]
	return s, ok
}

func (c *memoryCache) Set(_ context.Context, date string, slots []model.Slot) {
	c.entries[date] = slots
}

func (c *memoryCache) InvalidateDate(_ context.Context, date string) {
	delete(c.entries, date)
}

func (c *memoryCache) InvalidateAll(_ context.Context) {
	c.entries = make(map[string][]model.Slot)
}

var errStore = errors.New("store unavailable")

func rule(day model.Weekday, start, end string, duration int) *model.AvailabilityRule {
	r := &model.AvailabilityRule{DayOfWeek: day, StartTime: start, EndTime: end, IsAvailable: true}
	if duration > 0 {
		r.SlotDurationMinutes = &duration
	}
	return r
}
