package model

import "time"

type BlockedDate struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date      string    `json:"date" bson:"date" validate:"required,calendar_date"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=500"`
	CreatedBy string    `json:"created_by" bson:"created_by" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
