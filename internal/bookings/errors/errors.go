package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken means a live booking already claims the (date, time) slot.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrStatusChanged means the booking left the expected status before the write landed.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
