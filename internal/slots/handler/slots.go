package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lilo/internal/slots/service"
	apperrors "lilo/pkg/errors"
	httputil "lilo/pkg/http"
	"lilo/pkg/logger"
	"lilo/pkg/validation"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.writeError(w, apperrors.Validation("Date is required",
			validation.Field("date", "date query parameter is required").Details()))
		return
	}

	slots, err := h.service.ListSlots(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.List)
}
