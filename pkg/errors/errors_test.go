package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   New(CodeNotFound, "booking not found", http.StatusNotFound),
			expected: "NOT_FOUND: booking not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("failed to create booking", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: failed to create booking (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("no"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("dup"), CodeConflict, http.StatusConflict},
		{"slot conflict", SlotConflict("2030-01-07", "10:00"), CodeSlotConflict, http.StatusConflict},
		{"date blocked", DateBlocked("2030-01-07"), CodeDateBlocked, http.StatusConflict},
		{"no availability", NoAvailability("2030-01-07"), CodeNoAvailability, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestSlotConflict_Details(t *testing.T) {
	err := SlotConflict("2030-01-07", "10:00")

	if err.Details["date"] != "2030-01-07" {
		t.Errorf("date detail = %v, want 2030-01-07", err.Details["date"])
	}
	if err.Details["time"] != "10:00" {
		t.Errorf("time detail = %v, want 10:00", err.Details["time"])
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc")

	if err.Message != "Booking not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Booking not found")
	}
	if err.Details["id"] != "abc" || err.Details["resource"] != "Booking" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	conflict := SlotConflict("2030-01-07", "10:00")
	wrapped := fmt.Errorf("admission: %w", conflict)
	plain := errors.New("plain")

	if got := AsAppError(wrapped); got != conflict {
		t.Errorf("AsAppError() should unwrap to the original AppError")
	}

	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("Code = %s, want %s", got.Code, CodeInternal)
	}
	if !errors.Is(got, plain) {
		t.Errorf("AsAppError() should keep the original error in the chain")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", DateBlocked("2030-01-07"))

	if !HasCode(err, CodeDateBlocked) {
		t.Errorf("HasCode() = false, want true")
	}
	if HasCode(err, CodeSlotConflict) {
		t.Errorf("HasCode() = true for a different code")
	}
	if HasCode(errors.New("plain"), CodeDateBlocked) {
		t.Errorf("HasCode() = true for a non AppError")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	data := NoAvailability("2030-01-07").ToJSON()

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", err)
	}
	if decoded["code"] != CodeNoAvailability {
		t.Errorf("code = %v, want %s", decoded["code"], CodeNoAvailability)
	}
	if _, ok := decoded["details"]; !ok {
		t.Errorf("expected details in JSON output")
	}
}
