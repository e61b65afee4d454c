package service

import (
	"context"

	apperrors "lilo/pkg/errors"
	"lilo/pkg/model"
)

type OccupancyReader interface {
	// FindOccupiedTimes returns requested_time of every non-cancelled booking on date.
	FindOccupiedTimes(ctx context.Context, date string) ([]string, error)
}

// Checker marks generated slots taken by live bookings. The result is a hint;
// admission re-checks atomically.
type Checker struct {
	occupancy OccupancyReader
}

func NewChecker(occupancy OccupancyReader) *Checker {
	return &Checker{occupancy: occupancy}
}

func (c *Checker) Annotate(ctx context.Context, date string, times []string) ([]model.Slot, error) {
	slots := make([]model.Slot, 0, len(times))
	if len(times) == 0 {
		return slots, nil
	}

	occupied, err := c.occupancy.FindOccupiedTimes(ctx, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load bookings", err)
	}
	taken := make(map[string]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t] = struct{}{}
	}

	for _, t := range times {
		_, busy := taken[t]
		slots = append(slots, model.Slot{Time: t, IsAvailable: !busy})
	}
	return slots, nil
}
