// Package validation wraps go-playground/validator with the booking domain tags
// and translates failures into field level messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lilo/pkg/model"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, 0, len(e))
	for _, fe := range e {
		messages = append(messages, fe.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(e), strings.Join(messages, "; "))
}

// Details renders the errors as the AppError details payload.
func (e Errors) Details() map[string]any {
	fields := make(map[string]any, len(e))
	for _, fe := range e {
		fields[fe.Field] = fe.Message
	}
	return map[string]any{"fields": fields}
}

func Field(field, message string) Errors {
	return Errors{{Field: field, Message: message}}
}

var customTags = map[string]validator.Func{
	"clock":          validateClock,
	"calendar_date":  validateCalendarDate,
	"weekday":        validateWeekday,
	"booking_status": validateBookingStatus,
}

// New returns a validator reporting json field names and knowing the domain tags.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	for tag, fn := range customTags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return v, nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := model.ParseClock(fl.Field().String())
	return err == nil
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	return model.Weekday(fl.Field().String()).Valid()
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	return model.BookingStatus(fl.Field().String()).Valid()
}

// Struct validates s and returns Errors for field failures.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return Translate(verrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "clock":
			message = fmt.Sprintf("%s must be a time of day in HH:MM format", field)
		case "calendar_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "weekday":
			message = fmt.Sprintf("%s must be a lowercase day name (monday..sunday)", field)
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: pending confirmed in_progress completed cancelled", field)
		}

		out = append(out, FieldError{Field: err.Namespace(), Message: message})
	}
	return out
}
