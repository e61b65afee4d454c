package model

import "time"

type AvailabilityRule struct {
	ID                  string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	DayOfWeek           Weekday   `json:"day_of_week" bson:"day_of_week" validate:"required,weekday"`
	StartTime           string    `json:"start_time" bson:"start_time" validate:"required,clock"`
	EndTime             string    `json:"end_time" bson:"end_time" validate:"required,clock"`
	SlotDurationMinutes *int      `json:"slot_duration_minutes,omitempty" bson:"slot_duration_minutes,omitempty" validate:"omitempty,min=5,max=480"`
	IsAvailable         bool      `json:"is_available" bson:"is_available"`
	CreatedAt           time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}

// SlotDuration falls back to def when the rule leaves the duration unset.
func (r *AvailabilityRule) SlotDuration(def int) int {
	if r.SlotDurationMinutes == nil || *r.SlotDurationMinutes <= 0 {
		return def
	}
	return *r.SlotDurationMinutes
}

type AvailabilityRuleUpdate struct {
	DayOfWeek           *Weekday `json:"day_of_week,omitempty" validate:"omitempty,weekday"`
	StartTime           *string  `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime             *string  `json:"end_time,omitempty" validate:"omitempty,clock"`
	SlotDurationMinutes *int     `json:"slot_duration_minutes,omitempty" validate:"omitempty,min=5,max=480"`
	IsAvailable         *bool    `json:"is_available,omitempty"`
}
