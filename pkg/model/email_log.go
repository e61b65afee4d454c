package model

import "time"

const (
	EmailBookingConfirmation = "booking_confirmation"
	EmailAdminNotification   = "admin_notification"
	EmailStatusUpdate        = "status_update"

	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

type EmailLog struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID    string    `json:"booking_id" bson:"booking_id"`
	EmailType    string    `json:"email_type" bson:"email_type"`
	Recipient    string    `json:"recipient" bson:"recipient"`
	Subject      string    `json:"subject" bson:"subject"`
	Status       string    `json:"status" bson:"status"`
	ErrorMessage string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
	EventID      string    `json:"event_id,omitempty" bson:"event_id,omitempty"`
	SentAt       time.Time `json:"sent_at" bson:"sent_at"`
}
