package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/baharkarakas/card-ledger/internal/api/httpx"
	"github.com/baharkarakas/card-ledger/internal/api/validate"
	"github.com/baharkarakas/card-ledger/internal/middleware"
	"github.com/baharkarakas/card-ledger/internal/models"
	"github.com/baharkarakas/card-ledger/internal/services"
)

const maxEventBytes = 1 << 16

type LedgerHandler struct {
	Svc          *services.LedgerService
	MaxBatchSize int
}

func NewLedgerHandler(svc *services.LedgerService, maxBatchSize int) *LedgerHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}
	return &LedgerHandler{Svc: svc, MaxBatchSize: maxBatchSize}
}

// POST /events
func (h *LedgerHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.Event
	if err := httpx.DecodeJSON(w, r, maxEventBytes, &ev); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid event: "+err.Error(), nil)
		return
	}
	if err := h.Svc.AddEvent(r.Context(), ev); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Event added successfully"})
}

// POST /events/batch
func (h *LedgerHandler) AddEvents(w http.ResponseWriter, r *http.Request) {
	var events []models.Event
	if err := httpx.DecodeJSON(w, r, int64(h.MaxBatchSize)*maxEventBytes, &events); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid batch: "+err.Error(), nil)
		return
	}
	if len(events) > h.MaxBatchSize {
		httpx.WriteError(w, http.StatusBadRequest, "batch_too_large",
			fmt.Sprintf("batch size %d exceeds max %d", len(events), h.MaxBatchSize), nil)
		return
	}
	if err := h.Svc.AddEvents(r.Context(), events); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Events added successfully", Count: len(events)})
}

// GET /events
func (h *LedgerHandler) Events(w http.ResponseWriter, r *http.Request) {
	l, err := h.Svc.Events(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

// GET /summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Svc.Summary(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

// POST /reset
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Svc.Reset(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

// GET /audit?limit=n
func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	logs, err := h.Svc.AuditTrail(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

func (h *LedgerHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validate.Errs
	switch {
	case errors.As(err, &fieldErrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid event", fieldErrs)
	case errors.Is(err, services.ErrEmptyBatch):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		slog.Error("ledger request failed", "err", err, "path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
