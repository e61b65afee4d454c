package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lilo/pkg/config"
	apperrors "lilo/pkg/errors"
	"lilo/pkg/model"
	"lilo/pkg/validation"
)

type RuleReader interface {
	FindAvailableByWeekday(ctx context.Context, day model.Weekday) ([]*model.AvailabilityRule, error)
}

type BlockedDateReader interface {
	IsBlocked(ctx context.Context, date string) (bool, error)
}

// Generator derives the bookable start times of a calendar date from the weekly
// rules and the blocked dates. It does not look at bookings or at the clock.
type Generator struct {
	rules           RuleReader
	blocked         BlockedDateReader
	loc             *time.Location
	defaultDuration int
}

func NewGenerator(rules RuleReader, blocked BlockedDateReader, cfg *config.Config) *Generator {
	return &Generator{
		rules:           rules,
		blocked:         blocked,
		loc:             cfg.Location(),
		defaultDuration: cfg.DefaultSlotDurationMin,
	}
}

// Partition splits [start, end) into consecutive slots of duration minutes and
// returns their start offsets. A trailing partial slot is dropped.
func Partition(start, end, duration int) []int {
	if duration <= 0 || start >= end {
		return nil
	}
	var out []int
	for t := start; t+duration <= end; t += duration {
		out = append(out, t)
	}
	return out
}

// GenerateSlots returns the ascending, de-duplicated "HH:MM" slot starts for date.
// A blocked date or a weekday without rules yields an empty list.
func (g *Generator) GenerateSlots(ctx context.Context, date string) ([]string, error) {
	day, err := g.parseDate(date)
	if err != nil {
		return nil, err
	}
	blocked, err := g.isBlocked(ctx, date)
	if err != nil {
		return nil, err
	}
	if blocked {
		return []string{}, nil
	}

	bounds, err := g.boundaries(ctx, day)
	if err != nil {
		return nil, err
	}

	times := make([]string, 0, len(bounds))
	for _, m := range sortedMinutes(bounds) {
		times = append(times, model.FormatClock(m))
	}
	return times, nil
}

// FindSlot resolves the slot a booking at (date, clock) would occupy and returns
// its duration in minutes.
func (g *Generator) FindSlot(ctx context.Context, date, clock string) (int, error) {
	minute, err := model.ParseClock(clock)
	if err != nil {
		return 0, apperrors.Validation("Invalid requested time",
			validation.Field("requested_time", "requested_time must be in HH:MM format").Details())
	}

	day, err := g.parseDate(date)
	if err != nil {
		return 0, err
	}
	blocked, err := g.isBlocked(ctx, date)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, apperrors.DateBlocked(date)
	}

	bounds, err := g.boundaries(ctx, day)
	if err != nil {
		return 0, err
	}
	if len(bounds) == 0 {
		return 0, apperrors.NoAvailability(date)
	}

	duration, ok := bounds[minute]
	if !ok {
		return 0, apperrors.Validation("Requested time is not an available slot",
			validation.Field("requested_time", fmt.Sprintf("%s is not a slot start on %s", clock, date)).Details())
	}
	return duration, nil
}

// boundaries maps every slot start (minutes since midnight) to its duration.
// Where rules overlap, the earliest starting rule decides the duration.
func (g *Generator) boundaries(ctx context.Context, day time.Time) (map[int]int, error) {
	rules, err := g.rules.FindAvailableByWeekday(ctx, model.WeekdayOf(day))
	if err != nil {
		return nil, apperrors.Internal("Failed to load availability rules", err)
	}
	type window struct{ start, end, duration int }
	windows := make([]window, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsAvailable {
			continue
		}
		start, err := model.ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := model.ParseClock(rule.EndTime)
		if err != nil {
			continue
		}
		windows = append(windows, window{start: start, end: end, duration: rule.SlotDuration(g.defaultDuration)})
	}
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].start < windows[j].start })

	bounds := make(map[int]int)
	for _, w := range windows {
		for _, m := range Partition(w.start, w.end, w.duration) {
			if _, seen := bounds[m]; !seen {
				bounds[m] = w.duration
			}
		}
	}
	return bounds, nil
}

func (g *Generator) parseDate(date string) (time.Time, error) {
	day, err := model.ParseDate(date, g.loc)
	if err != nil {
		return time.Time{}, apperrors.Validation("Invalid date",
			validation.Field("date", "date must be in YYYY-MM-DD format").Details())
	}
	return day, nil
}

func (g *Generator) isBlocked(ctx context.Context, date string) (bool, error) {
	blocked, err := g.blocked.IsBlocked(ctx, date)
	if err != nil {
		return false, apperrors.Internal("Failed to check blocked dates", err)
	}
	return blocked, nil
}

func sortedMinutes(bounds map[int]int) []int {
	out := make([]int, 0, len(bounds))
	for m := range bounds {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
