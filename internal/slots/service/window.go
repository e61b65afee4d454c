package service

import (
	"fmt"
	"time"

	"lilo/pkg/config"
	apperrors "lilo/pkg/errors"
	"lilo/pkg/model"
	"lilo/pkg/validation"
)

// DateWindow bounds which calendar dates accept bookings, evaluated in the
// business time zone.
type DateWindow struct {
	loc            *time.Location
	maxAdvanceDays int
	now            func() time.Time
}

func NewDateWindow(cfg *config.Config) *DateWindow {
	return &DateWindow{
		loc:            cfg.Location(),
		maxAdvanceDays: cfg.MaxAdvanceBookingDays,
		now:            time.Now,
	}
}

// WithClock replaces the time source.
func (w *DateWindow) WithClock(now func() time.Time) *DateWindow {
	w.now = now
	return w
}

func (w *DateWindow) Today() string {
	return w.now().In(w.loc).Format(model.DateLayout)
}

// Check rejects malformed dates, dates before today and dates past the advance
// horizon. It returns date in canonical YYYY-MM-DD form for every later lookup.
func (w *DateWindow) Check(date string) (string, error) {
	day, err := model.ParseDate(date, w.loc)
	if err != nil {
		return "", apperrors.Validation("Invalid date",
			validation.Field("date", "date must be in YYYY-MM-DD format").Details())
	}

	now := w.now().In(w.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, w.loc)
	if day.Before(today) {
		return "", apperrors.Validation("Date is in the past",
			validation.Field("date", "date cannot be in the past").Details())
	}
	if w.maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, w.maxAdvanceDays)) {
		return "", apperrors.Validation("Date is too far ahead",
			validation.Field("date", fmt.Sprintf("date cannot be more than %d days ahead", w.maxAdvanceDays)).Details())
	}
	return day.Format(model.DateLayout), nil
}

// Elapsed reports whether the slot starting at clock on date has already begun.
func (w *DateWindow) Elapsed(date, clock string) bool {
	now := w.now().In(w.loc)
	today := now.Format(model.DateLayout)
	if date != today {
		return date < today
	}
	minute, err := model.ParseClock(clock)
	if err != nil {
		return false
	}
	return minute <= now.Hour()*60+now.Minute()
}
