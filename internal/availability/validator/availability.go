package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"lilo/pkg/logger"
	"lilo/pkg/model"
	"lilo/pkg/validation"
)

type AvailabilityValidator struct {
	validate *validator.Validate
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize availability validator", "error", err)
	}
	return &AvailabilityValidator{validate: v}
}

// ValidateRule checks field formats and that the rule describes a non-empty window
// holding at least one whole slot.
func (v *AvailabilityValidator) ValidateRule(rule *model.AvailabilityRule, defaultDuration int) error {
	if err := validation.Struct(v.validate, rule); err != nil {
		return err
	}

	start, _ := model.ParseClock(rule.StartTime)
	end, _ := model.ParseClock(rule.EndTime)
	if start >= end {
		return validation.Field("end_time", "end_time must be after start_time")
	}
	if d := rule.SlotDuration(defaultDuration); d > end-start {
		return validation.Field("slot_duration_minutes",
			fmt.Sprintf("slot_duration_minutes (%d) exceeds the %d minute window", d, end-start))
	}
	return nil
}

func (v *AvailabilityValidator) ValidateRuleUpdate(update *model.AvailabilityRuleUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *AvailabilityValidator) ValidateBlockedDate(blocked *model.BlockedDate) error {
	return validation.Struct(v.validate, blocked)
}
