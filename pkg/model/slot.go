package model

import "time"

// Slot is derived on demand and never persisted.
type Slot struct {
	Time        string `json:"time"`
	IsAvailable bool   `json:"is_available"`
}

// SlotClaim is the persisted uniqueness token for an occupied (date, time).
// Its _id is the slot key, so a second claim fails with a duplicate key error.
type SlotClaim struct {
	ID        string    `bson:"_id"`
	BookingID string    `bson:"booking_id"`
	Date      string    `bson:"date"`
	Time      string    `bson:"time"`
	CreatedAt time.Time `bson:"created_at"`
}

func SlotKey(date, clock string) string {
	return date + "T" + clock
}
