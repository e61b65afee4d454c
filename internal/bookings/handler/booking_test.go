package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "lilo/pkg/errors"
	"lilo/pkg/logger"
	"lilo/pkg/model"
)

const apiKey = "secret-key"

type mockBookingService struct {
	createFunc       func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Booking, error)
	getAllFunc       func(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	updateStatusFunc func(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error)
	deleteFunc       func(ctx context.Context, id string) error
	summaryFunc      func(ctx context.Context) ([]model.StatusCount, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, req)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.getAllFunc(ctx, filter, limit, offset)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
	return m.updateStatusFunc(ctx, id, update)
}

func (m *mockBookingService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockBookingService) Summary(ctx context.Context) ([]model.StatusCount, error) {
	return m.summaryFunc(ctx)
}

func serve(svc *mockBookingService, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewBookingHandler(svc, apiKey, logger.New(logger.Config{Output: io.Discard})).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

const validBody = `{"full_name":"Ada Lovelace","email":"ada@example.com","phone":"+16502530000",
"services_requested":["Consulting"],"requested_date":"2025-01-06","requested_time":"10:00","consent":true}`

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createFunc func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: validBody,
			createFunc: func(_ context.Context, req *model.BookingRequest) (*model.Booking, error) {
				if req.RequestedTime != "10:00" {
					t.Errorf("requested_time = %q", req.RequestedTime)
				}
				return &model.Booking{ID: "65a000000000000000000001", Status: model.StatusPending}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "slot conflict",
			body: validBody,
			createFunc: func(context.Context, *model.BookingRequest) (*model.Booking, error) {
				return nil, apperrors.SlotConflict("2025-01-06", "10:00")
			},
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSlotConflict,
		},
		{
			name:       "malformed body",
			body:       `{"full_name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "unknown field",
			body:       `{"status":"completed"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{createFunc: tt.createFunc}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec := serve(svc, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			body := decode(t, rec)
			if tt.wantCode != "" {
				if body["code"] != tt.wantCode {
					t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
				}
				return
			}
			data := body["data"].(map[string]any)
			if data["id"] != "65a000000000000000000001" || data["status"] != "pending" {
				t.Errorf("data = %v", data)
			}
		})
	}
}

func TestOperatorRoutesRequireKey(t *testing.T) {
	svc := &mockBookingService{
		getAllFunc: func(context.Context, model.BookingFilter, int, int64) ([]*model.Booking, int64, error) {
			t.Fatal("service should not be reached without credentials")
			return nil, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	rec := serve(svc, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = serve(svc, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGetAll(t *testing.T) {
	svc := &mockBookingService{
		getAllFunc: func(_ context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
			if filter.Status != model.StatusConfirmed || filter.Date != "2025-01-06" {
				t.Errorf("filter = %+v", filter)
			}
			if limit != 5 || offset != 10 {
				t.Errorf("limit = %d, offset = %d", limit, offset)
			}
			return []*model.Booking{{ID: "a"}}, 11, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=confirmed&date=2025-01-06&limit=5&offset=10", nil)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	rec := serve(svc, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["total_count"] != float64(11) {
		t.Errorf("total_count = %v", body["total_count"])
	}
}

func TestGetAll_BadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	rec := serve(&mockBookingService{}, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockBookingService{
		updateStatusFunc: func(_ context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
			if id != "65a000000000000000000001" {
				t.Errorf("id = %q", id)
			}
			if update.Status == model.StatusCompleted {
				return nil, apperrors.Conflict("Invalid status transition")
			}
			return &model.Booking{ID: id, Status: update.Status}, nil
		},
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"confirm", `{"status":"confirmed"}`, http.StatusOK},
		{"invalid transition", `{"status":"completed"}`, http.StatusConflict},
		{"empty body", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/65a000000000000000000001/status", strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+apiKey)
			req.Header.Set("X-Operator-ID", "maria")

			rec := serve(svc, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestDeleteAndSummary(t *testing.T) {
	svc := &mockBookingService{
		deleteFunc: func(_ context.Context, id string) error {
			if id == "missing" {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return nil
		},
		summaryFunc: func(context.Context) ([]model.StatusCount, error) {
			return []model.StatusCount{{Status: model.StatusPending, Count: 2}}, nil
		},
	}

	auth := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		return req
	}

	if rec := serve(svc, auth(httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/65a000000000000000000001", nil))); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := serve(svc, auth(httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/missing", nil))); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}

	rec := serve(svc, auth(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/summary", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	data := decode(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Errorf("summary data = %v", data)
	}
}
