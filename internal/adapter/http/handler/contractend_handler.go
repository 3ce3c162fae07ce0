package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peopleops/leaveledger/internal/adapter/http/dto"
)

// ContractEndService defines the behavior needed by ContractEndHandler.
type ContractEndService interface {
	Apply(ctx context.Context, employeeID string, contractEndAt time.Time) error
	Move(ctx context.Context, employeeID string, newContractEndAt time.Time) error
	Remove(ctx context.Context, employeeID string) error
}

// ContractEndHandler handles contract-end HTTP requests.
type ContractEndHandler struct {
	contractEndUC ContractEndService
}

// NewContractEndHandler creates a new ContractEndHandler.
func NewContractEndHandler(contractEndUC ContractEndService) *ContractEndHandler {
	return &ContractEndHandler{contractEndUC: contractEndUC}
}

// Apply records a contract end: truncates straddling leave, drops future
// accruals and seeds the boundary reset.
func (h *ContractEndHandler) Apply(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	var req dto.ContractEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.contractEndUC.Apply(r.Context(), employeeID, req.ContractEndAt); err != nil {
		writeError(w, mapDomainError(err), "failed to apply contract end", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

// Move shifts an existing contract end to a new date.
func (h *ContractEndHandler) Move(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	var req dto.ContractEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.contractEndUC.Move(r.Context(), employeeID, req.ContractEndAt); err != nil {
		writeError(w, mapDomainError(err), "failed to move contract end", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// Remove clears a contract end and restores the accruals it cut off.
func (h *ContractEndHandler) Remove(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "missing employee ID", "")
		return
	}

	if err := h.contractEndUC.Remove(r.Context(), employeeID); err != nil {
		writeError(w, mapDomainError(err), "failed to remove contract end", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
