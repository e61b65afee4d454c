package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lilo/internal/bookings/service"
	httputil "lilo/pkg/http"
	"lilo/pkg/logger"
	"lilo/pkg/middleware"
	"lilo/pkg/model"
)

// CreatedResponse is all a public client learns about its booking.
type CreatedResponse struct {
	ID     string              `json:"id"`
	Status model.BookingStatus `json:"status"`
}

type BookingHandler struct {
	service  service.BookingService
	log      *logger.Logger
	operator func(httprouter.Handle) httprouter.Handle
}

func NewBookingHandler(service service.BookingService, operatorAPIKey string, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:  service,
		log:      log,
		operator: middleware.RequireOperator(operatorAPIKey, log),
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, CreatedResponse{ID: booking.ID, Status: booking.Status}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		Status: model.BookingStatus(query.Get("status")),
		Date:   query.Get("date"),
	}

	bookings, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if op, ok := middleware.OperatorFrom(r.Context()); ok {
		h.log.Info("Operator changed booking status", "operator", op.ID, "id", booking.ID, "status", booking.Status)
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts, err := h.service.Summary(r.Context())
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	if err := httputil.WriteSuccess(w, counts); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)

	router.GET("/api/v1/bookings", h.operator(h.GetAll))
	router.GET("/api/v1/bookings/summary", h.operator(h.Summary))
	router.GET("/api/v1/bookings/id/:id", h.operator(h.GetByID))
	router.PATCH("/api/v1/bookings/id/:id/status", h.operator(h.UpdateStatus))
	router.DELETE("/api/v1/bookings/id/:id", h.operator(h.Delete))
}
