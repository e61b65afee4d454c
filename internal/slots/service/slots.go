package service

import (
	"context"

	"lilo/internal/slots/cache"
	"lilo/pkg/config"
	"lilo/pkg/model"
)

type SlotService interface {
	ListSlots(ctx context.Context, date string) ([]model.Slot, error)
}

type slotService struct {
	generator *Generator
	checker   *Checker
	window    *DateWindow
	cache     cache.SlotCache
	cfg       *config.Config
}

func NewSlotService(generator *Generator, checker *Checker, window *DateWindow, cache cache.SlotCache, cfg *config.Config) SlotService {
	return &slotService{
		generator: generator,
		checker:   checker,
		window:    window,
		cache:     cache,
		cfg:       cfg,
	}
}

// ListSlots returns every slot of date with its current availability. Slots of
// today that already started are reported unavailable.
func (s *slotService) ListSlots(ctx context.Context, date string) ([]model.Slot, error) {
	date, err := s.window.Check(date)
	if err != nil {
		return nil, err
	}

	slots, hit := s.cache.Get(ctx, date)
	if !hit {
		times, err := s.generator.GenerateSlots(ctx, date)
		if err != nil {
			s.cfg.Log.Error("Failed to generate slots", "date", date, "error", err)
			return nil, err
		}
		slots, err = s.checker.Annotate(ctx, date, times)
		if err != nil {
			s.cfg.Log.Error("Failed to check slot occupancy", "date", date, "error", err)
			return nil, err
		}
		s.cache.Set(ctx, date, slots)
	}

	out := make([]model.Slot, len(slots))
	for i, slot := range slots {
		if slot.IsAvailable && s.window.Elapsed(date, slot.Time) {
			slot.IsAvailable = false
		}
		out[i] = slot
	}

	s.cfg.Log.Debug("Slots listed", "date", date, "count", len(out), "cached", hit)
	return out, nil
}
