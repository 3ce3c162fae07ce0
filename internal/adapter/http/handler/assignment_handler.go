package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peopleops/leaveledger/internal/adapter/http/dto"
	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// AssignmentService defines the behavior needed by AssignmentHandler.
type AssignmentService interface {
	Create(ctx context.Context, input usecase.CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error)
	Update(ctx context.Context, id string, newEffectiveAt time.Time) (*domain.EmployeeTimeOffPolicy, error)
	Destroy(ctx context.Context, id string) error
}

// AssignmentHandler handles policy-assignment HTTP requests.
type AssignmentHandler struct {
	assignmentUC AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentUC AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentUC: assignmentUC}
}

// Create assigns a policy and generates the accrual entries.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	assignment, err := h.assignmentUC.Create(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create assignment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AssignmentFromDomain(assignment))
}

// Update moves an assignment's start date and regenerates accruals.
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing assignment ID", "")
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	assignment, err := h.assignmentUC.Update(r.Context(), id, req.EffectiveAt)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update assignment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AssignmentFromDomain(assignment))
}

// Destroy removes an assignment together with its accrual entries.
func (h *AssignmentHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing assignment ID", "")
		return
	}

	if err := h.assignmentUC.Destroy(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete assignment", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
