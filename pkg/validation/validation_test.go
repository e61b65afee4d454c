package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lilo/pkg/model"
)

func TestBookingRequestValidation(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	valid := func() model.BookingRequest {
		return model.BookingRequest{
			FullName:          "Ada Lovelace",
			Email:             "ada@example.com",
			Phone:             "+16502530000",
			ServicesRequested: []string{"DOT compliance"},
			RequestedDate:     "2025-01-06",
			RequestedTime:     "10:00",
			Consent:           true,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*model.BookingRequest)
		wantField string
	}{
		{"valid", func(*model.BookingRequest) {}, ""},
		{"short name", func(r *model.BookingRequest) { r.FullName = "A" }, "full_name"},
		{"bad email", func(r *model.BookingRequest) { r.Email = "not-an-email" }, "email"},
		{"no services", func(r *model.BookingRequest) { r.ServicesRequested = nil }, "services_requested"},
		{"bad date", func(r *model.BookingRequest) { r.RequestedDate = "06/01/2025" }, "requested_date"},
		{"bad time", func(r *model.BookingRequest) { r.RequestedTime = "10am" }, "requested_time"},
		{"no consent", func(r *model.BookingRequest) { r.Consent = false }, "consent"},
		{"bad contact method", func(r *model.BookingRequest) { r.ContactMethod = "fax" }, "contact_method"},
		{"too many files", func(r *model.BookingRequest) {
			r.FileURLs = []string{"https://a.co/1", "https://a.co/2", "https://a.co/3", "https://a.co/4", "https://a.co/5", "https://a.co/6"}
		}, "file_urls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := Struct(v, &req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs Errors
			require.True(t, errors.As(err, &verrs), "expected validation.Errors, got %v", err)
			assert.Contains(t, verrs.Error(), tt.wantField)
		})
	}
}

func TestAvailabilityRuleValidation(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	rule := model.AvailabilityRule{DayOfWeek: model.Monday, StartTime: "09:00", EndTime: "12:00", IsAvailable: true}
	assert.NoError(t, Struct(v, &rule))

	rule.DayOfWeek = "Funday"
	rule.StartTime = "9"
	err = Struct(v, &rule)
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, verrs.Details()["fields"], "AvailabilityRule.start_time")
}

func TestStatusUpdateValidation(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	assert.NoError(t, Struct(v, &model.StatusUpdate{Status: model.StatusConfirmed}))
	assert.Error(t, Struct(v, &model.StatusUpdate{Status: "archived"}))
	assert.Error(t, Struct(v, &model.StatusUpdate{}))
}
