package service

import (
	"context"
	"errors"

	availabilityerrors "lilo/internal/availability/errors"
	"lilo/internal/availability/repository"
	"lilo/internal/availability/validator"
	"lilo/pkg/config"
	apperrors "lilo/pkg/errors"
	"lilo/pkg/model"
	"lilo/pkg/sanitizer"
	"lilo/pkg/validation"
)

type AvailabilityService interface {
	CreateRule(ctx context.Context, rule *model.AvailabilityRule) error
	GetRule(ctx context.Context, id string) (*model.AvailabilityRule, error)
	ListRules(ctx context.Context) ([]*model.AvailabilityRule, error)
	UpdateRule(ctx context.Context, id string, update *model.AvailabilityRuleUpdate) (*model.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id string) error

	BlockDate(ctx context.Context, blocked *model.BlockedDate) error
	ListBlockedDates(ctx context.Context, from string) ([]*model.BlockedDate, error)
	UnblockDate(ctx context.Context, id string) error
}

// SlotInvalidator drops cached slot listings after availability changes.
type SlotInvalidator interface {
	InvalidateDate(ctx context.Context, date string)
	InvalidateAll(ctx context.Context)
}

type availabilityService struct {
	rules     repository.RuleRepository
	blocked   repository.BlockedDateRepository
	validator *validator.AvailabilityValidator
	cache     SlotInvalidator
	cfg       *config.Config
}

func NewAvailabilityService(
	rules repository.RuleRepository,
	blocked repository.BlockedDateRepository,
	validator *validator.AvailabilityValidator,
	cache SlotInvalidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		rules:     rules,
		blocked:   blocked,
		validator: validator,
		cache:     cache,
		cfg:       cfg,
	}
}

func (s *availabilityService) CreateRule(ctx context.Context, rule *model.AvailabilityRule) error {
	if day, ok := model.ParseWeekday(string(rule.DayOfWeek)); ok {
		rule.DayOfWeek = day
	}
	if err := s.validateRule(rule); err != nil {
		return err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		s.cfg.Log.Error("Failed to create availability rule", "error", err)
		return apperrors.Internal("Failed to create availability rule", err)
	}
	s.cache.InvalidateAll(ctx)

	s.cfg.Log.Info("Availability rule created",
		"id", rule.ID,
		"day_of_week", rule.DayOfWeek,
		"start_time", rule.StartTime,
		"end_time", rule.EndTime,
		"is_available", rule.IsAvailable,
	)
	return nil
}

func (s *availabilityService) GetRule(ctx context.Context, id string) (*model.AvailabilityRule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Rule ID cannot be empty")
	}
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, mapRuleError(err, id, "Failed to retrieve availability rule")
	}
	return rule, nil
}

func (s *availabilityService) ListRules(ctx context.Context) ([]*model.AvailabilityRule, error) {
	rules, err := s.rules.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability rules", "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability rules", err)
	}
	return rules, nil
}

func (s *availabilityService) UpdateRule(ctx context.Context, id string, update *model.AvailabilityRuleUpdate) (*model.AvailabilityRule, error) {
	existing, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.DayOfWeek != nil {
		if day, ok := model.ParseWeekday(string(*update.DayOfWeek)); ok {
			update.DayOfWeek = &day
		}
	}
	if err := s.validator.ValidateRuleUpdate(update); err != nil {
		return nil, validationError("Invalid update input", err)
	}

	merged := mergeRuleUpdate(existing, update)
	if err := s.validateRule(merged); err != nil {
		return nil, err
	}

	if err := s.rules.Update(ctx, merged); err != nil {
		return nil, mapRuleError(err, id, "Failed to update availability rule")
	}
	s.cache.InvalidateAll(ctx)

	s.cfg.Log.Info("Availability rule updated", "id", id)
	return merged, nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Rule ID cannot be empty")
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return mapRuleError(err, id, "Failed to delete availability rule")
	}
	s.cache.InvalidateAll(ctx)

	s.cfg.Log.Info("Availability rule deleted", "id", id)
	return nil
}

func (s *availabilityService) BlockDate(ctx context.Context, blocked *model.BlockedDate) error {
	blocked.Reason = sanitizer.TrimAndNormalize(blocked.Reason)
	blocked.Date = sanitizer.TrimAndNormalize(blocked.Date)

	if err := s.validator.ValidateBlockedDate(blocked); err != nil {
		s.cfg.Log.Warn("Blocked date validation failed", "error", err)
		return validationError("Blocked date validation failed", err)
	}

	if err := s.blocked.Create(ctx, blocked); err != nil {
		if errors.Is(err, availabilityerrors.ErrDateAlreadyBlocked) {
			return apperrors.Conflict("Date is already blocked").WithDetails(map[string]any{"date": blocked.Date})
		}
		s.cfg.Log.Error("Failed to block date", "date", blocked.Date, "error", err)
		return apperrors.Internal("Failed to block date", err)
	}
	s.cache.InvalidateDate(ctx, blocked.Date)

	s.cfg.Log.Info("Date blocked",
		"id", blocked.ID,
		"date", blocked.Date,
		"created_by", blocked.CreatedBy,
	)
	return nil
}

func (s *availabilityService) ListBlockedDates(ctx context.Context, from string) ([]*model.BlockedDate, error) {
	if from != "" {
		if _, err := model.ParseDate(from, s.cfg.Location()); err != nil {
			return nil, apperrors.Validation("Invalid from date", validation.Field("from", "from must be a date in YYYY-MM-DD format").Details())
		}
	}

	dates, err := s.blocked.FindFrom(ctx, from)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocked dates", "error", err)
		return nil, apperrors.Internal("Failed to retrieve blocked dates", err)
	}
	return dates, nil
}

func (s *availabilityService) UnblockDate(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Blocked date ID cannot be empty")
	}

	removed, err := s.blocked.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, availabilityerrors.ErrBlockedDateNotFound):
			return apperrors.NotFoundWithID("Blocked date", id)
		case errors.Is(err, availabilityerrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid blocked date ID format")
		}
		return apperrors.Internal("Failed to unblock date", err)
	}
	s.cache.InvalidateDate(ctx, removed.Date)

	s.cfg.Log.Info("Date unblocked", "id", id, "date", removed.Date)
	return nil
}

func (s *availabilityService) validateRule(rule *model.AvailabilityRule) error {
	if err := s.validator.ValidateRule(rule, s.cfg.DefaultSlotDurationMin); err != nil {
		s.cfg.Log.Warn("Availability rule validation failed", "error", err)
		return validationError("Availability rule validation failed", err)
	}
	rule.StartTime = canonicalClock(rule.StartTime)
	rule.EndTime = canonicalClock(rule.EndTime)
	return nil
}

// canonicalClock stores times as zero-padded "HH:MM" so they order and compare as text.
func canonicalClock(clock string) string {
	m, err := model.ParseClock(clock)
	if err != nil {
		return clock
	}
	return model.FormatClock(m)
}

func mergeRuleUpdate(existing *model.AvailabilityRule, update *model.AvailabilityRuleUpdate) *model.AvailabilityRule {
	merged := *existing

	if update.DayOfWeek != nil {
		merged.DayOfWeek = *update.DayOfWeek
	}
	if update.StartTime != nil {
		merged.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		merged.EndTime = *update.EndTime
	}
	if update.SlotDurationMinutes != nil {
		d := *update.SlotDurationMinutes
		merged.SlotDurationMinutes = &d
	}
	if update.IsAvailable != nil {
		merged.IsAvailable = *update.IsAvailable
	}
	return &merged
}

func mapRuleError(err error, id, message string) error {
	switch {
	case errors.Is(err, availabilityerrors.ErrRuleNotFound):
		return apperrors.NotFoundWithID("Availability rule", id)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid availability rule ID format")
	}
	return apperrors.Internal(message, err)
}

func validationError(message string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
