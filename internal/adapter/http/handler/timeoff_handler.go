package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peopleops/leaveledger/internal/adapter/http/dto"
	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// TimeOffService defines the behavior needed by TimeOffHandler.
type TimeOffService interface {
	Create(ctx context.Context, input usecase.CreateTimeOffInput) (*domain.TimeOff, error)
	Approve(ctx context.Context, id string) (*domain.BalanceEntry, error)
	Decline(ctx context.Context, id string) error
}

// TimeOffHandler handles time-off HTTP requests.
type TimeOffHandler struct {
	timeOffUC TimeOffService
}

// NewTimeOffHandler creates a new TimeOffHandler.
func NewTimeOffHandler(timeOffUC TimeOffService) *TimeOffHandler {
	return &TimeOffHandler{timeOffUC: timeOffUC}
}

// Create records a pending time-off request.
func (h *TimeOffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	timeOff, err := h.timeOffUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create time off", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TimeOffFromDomain(timeOff))
}

// Approve approves a pending request and books its consumption.
func (h *TimeOffHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing time off ID", "")
		return
	}

	entry, err := h.timeOffUC.Approve(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve time off", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(entry))
}

// Decline rejects a request, unwinding its consumption when it had been
// approved before.
func (h *TimeOffHandler) Decline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing time off ID", "")
		return
	}

	if err := h.timeOffUC.Decline(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to decline time off", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}
