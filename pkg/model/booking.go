package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

const (
	ContactEmail = "email"
	ContactPhone = "phone"
	ContactText  = "text"
)

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

func (s BookingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Occupies reports whether a booking in this status holds its slot.
// Completed bookings keep the slot, only cancellation frees it.
func (s BookingStatus) Occupies() bool {
	return s != StatusCancelled
}

type Booking struct {
	ID                 string        `json:"id,omitempty" bson:"_id,omitempty"`
	FullName           string        `json:"full_name" bson:"full_name"`
	BusinessName       string        `json:"business_name,omitempty" bson:"business_name,omitempty"`
	Email              string        `json:"email" bson:"email"`
	Phone              string        `json:"phone" bson:"phone"`
	ContactMethod      string        `json:"contact_method" bson:"contact_method"`
	State              string        `json:"state,omitempty" bson:"state,omitempty"`
	City               string        `json:"city,omitempty" bson:"city,omitempty"`
	ServicesRequested  []string      `json:"services_requested" bson:"services_requested"`
	Notes              string        `json:"notes,omitempty" bson:"notes,omitempty"`
	HowHeard           string        `json:"how_heard,omitempty" bson:"how_heard,omitempty"`
	FileURLs           []string      `json:"file_urls,omitempty" bson:"file_urls,omitempty"`
	RequestedDate      string        `json:"requested_date" bson:"requested_date"`
	RequestedTime      string        `json:"requested_time" bson:"requested_time"`
	DurationMinutes    int           `json:"duration_minutes" bson:"duration_minutes"`
	Consent            bool          `json:"consent" bson:"consent"`
	Status             BookingStatus `json:"status" bson:"status"`
	AdminNotes         string        `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is the public booking form payload. Status and timestamps are server-set.
type BookingRequest struct {
	FullName          string   `json:"full_name" validate:"required,min=2,max=100"`
	BusinessName      string   `json:"business_name,omitempty" validate:"omitempty,max=100"`
	Email             string   `json:"email" validate:"required,email,max=255"`
	Phone             string   `json:"phone" validate:"required,min=10,max=20"`
	ContactMethod     string   `json:"contact_method,omitempty" validate:"omitempty,oneof=email phone text"`
	State             string   `json:"state,omitempty" validate:"omitempty,max=50"`
	City              string   `json:"city,omitempty" validate:"omitempty,max=100"`
	ServicesRequested []string `json:"services_requested" validate:"required,min=1,max=20,dive,required,max=100"`
	Notes             string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
	HowHeard          string   `json:"how_heard,omitempty" validate:"omitempty,max=100"`
	FileURLs          []string `json:"file_urls,omitempty" validate:"omitempty,max=5,dive,url"`
	RequestedDate     string   `json:"requested_date" validate:"required,calendar_date"`
	RequestedTime     string   `json:"requested_time" validate:"required,clock"`
	Consent           bool     `json:"consent" validate:"required"`
}

func (r *BookingRequest) ToBooking() *Booking {
	method := r.ContactMethod
	if method == "" {
		method = ContactEmail
	}
	return &Booking{
		FullName:          r.FullName,
		BusinessName:      r.BusinessName,
		Email:             r.Email,
		Phone:             r.Phone,
		ContactMethod:     method,
		State:             r.State,
		City:              r.City,
		ServicesRequested: r.ServicesRequested,
		Notes:             r.Notes,
		HowHeard:          r.HowHeard,
		FileURLs:          r.FileURLs,
		RequestedDate:     r.RequestedDate,
		RequestedTime:     r.RequestedTime,
		Consent:           r.Consent,
		Status:            StatusPending,
	}
}

type StatusUpdate struct {
	Status             BookingStatus `json:"status" validate:"required,booking_status"`
	AdminNotes         *string       `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
	CancellationReason string        `json:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
}

type BookingFilter struct {
	Status BookingStatus
	Date   string
}

type StatusCount struct {
	Status BookingStatus `json:"status" bson:"_id"`
	Count  int64         `json:"count" bson:"count"`
}

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is admitted or changes status.
type BookingEvent struct {
	Type           string        `json:"type"`
	Booking        Booking       `json:"booking"`
	PreviousStatus BookingStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
