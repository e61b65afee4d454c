package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"lilo/pkg/logger"
	"lilo/pkg/model"
	"lilo/pkg/validation"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRequest expects a sanitized request, so the phone must already be E.164.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	if !e164Regex.MatchString(req.Phone) {
		return validation.Field("phone", "phone must be a valid phone number")
	}
	return nil
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.StatusUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.Status == model.StatusCancelled && update.CancellationReason == "" {
		return validation.Field("cancellation_reason", "cancellation_reason is required when cancelling")
	}
	return nil
}
