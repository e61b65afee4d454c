package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lilo/internal/availability/service"
	httputil "lilo/pkg/http"
	"lilo/pkg/logger"
	"lilo/pkg/middleware"
	"lilo/pkg/model"
)

type AvailabilityHandler struct {
	service  service.AvailabilityService
	log      *logger.Logger
	operator func(httprouter.Handle) httprouter.Handle
}

func NewAvailabilityHandler(service service.AvailabilityService, operatorAPIKey string, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:  service,
		log:      log,
		operator: middleware.RequireOperator(operatorAPIKey, log),
	}
}

func (h *AvailabilityHandler) CreateRule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rule model.AvailabilityRule
	if err := httputil.DecodeJSON(r, &rule); err != nil {
		h.writeError(w, "CreateRule", err)
		return
	}

	if err := h.service.CreateRule(r.Context(), &rule); err != nil {
		h.writeError(w, "CreateRule", err)
		return
	}

	if err := httputil.WriteCreated(w, rule); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRule", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) GetRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rule, err := h.service.GetRule(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetRule", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) ListRules(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rules, err := h.service.ListRules(r.Context())
	if err != nil {
		h.writeError(w, "ListRules", err)
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRules", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AvailabilityRuleUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateRule", err)
		return
	}

	rule, err := h.service.UpdateRule(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateRule", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateRule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteRule(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteRule", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) BlockDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var blocked model.BlockedDate
	if err := httputil.DecodeJSON(r, &blocked); err != nil {
		h.writeError(w, "BlockDate", err)
		return
	}

	if op, ok := middleware.OperatorFrom(r.Context()); ok {
		blocked.CreatedBy = op.ID
	}

	if err := h.service.BlockDate(r.Context(), &blocked); err != nil {
		h.writeError(w, "BlockDate", err)
		return
	}

	if err := httputil.WriteCreated(w, blocked); err != nil {
		h.log.Error("failed to write created response", "handler", "BlockDate", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) ListBlockedDates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dates, err := h.service.ListBlockedDates(r.Context(), r.URL.Query().Get("from"))
	if err != nil {
		h.writeError(w, "ListBlockedDates", err)
		return
	}

	if err := httputil.WriteSuccess(w, dates); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBlockedDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) UnblockDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.UnblockDate(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "UnblockDate", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/rules", h.operator(h.ListRules))
	router.POST("/api/v1/availability/rules", h.operator(h.CreateRule))
	router.GET("/api/v1/availability/rules/:id", h.operator(h.GetRule))
	router.PATCH("/api/v1/availability/rules/:id", h.operator(h.UpdateRule))
	router.DELETE("/api/v1/availability/rules/:id", h.operator(h.DeleteRule))

	router.GET("/api/v1/availability/blocked-dates", h.operator(h.ListBlockedDates))
	router.POST("/api/v1/availability/blocked-dates", h.operator(h.BlockDate))
	router.DELETE("/api/v1/availability/blocked-dates/:id", h.operator(h.UnblockDate))

	// Public calendar view of closures.
	router.GET("/api/v1/blocked-dates", h.ListBlockedDates)
}
