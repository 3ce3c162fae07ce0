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

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	CreateAdjustment(ctx context.Context, input usecase.CreateAdjustmentInput) (*domain.BalanceEntry, error)
	Get(ctx context.Context, id string) (*domain.BalanceEntry, error)
	List(ctx context.Context, employeeID, categoryID string, limit, offset int) ([]*domain.BalanceEntry, error)
}

// OverviewService defines the behavior needed for balance overviews.
type OverviewService interface {
	Overview(ctx context.Context, employeeID, categoryID string, asOf time.Time) (*usecase.BalanceOverview, error)
}

// BalanceHandler handles ledger-related HTTP requests.
type BalanceHandler struct {
	balanceUC  BalanceService
	overviewUC OverviewService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, overviewUC OverviewService) *BalanceHandler {
	return &BalanceHandler{
		balanceUC:  balanceUC,
		overviewUC: overviewUC,
	}
}

// CreateAdjustment writes a manual adjustment entry.
func (h *BalanceHandler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.balanceUC.CreateAdjustment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceFromDomain(entry))
}

// Get retrieves a balance entry by ID.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	entry, err := h.balanceUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(entry))
}

// List returns one partition of the ledger, in effective order.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	categoryID := chi.URLParam(r, "categoryID")
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.balanceUC.List(r.Context(), employeeID, categoryID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(entries),
		Total:    int64(len(entries)),
	})
}

// Overview returns the category's standing for the policy period containing
// as_of (today by default).
func (h *BalanceHandler) Overview(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	categoryID := chi.URLParam(r, "categoryID")
	asOf := parseTimeQuery(r, "as_of", time.Now().UTC())

	overview, err := h.overviewUC.Overview(r.Context(), employeeID, categoryID, asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute overview", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, overview)
}
