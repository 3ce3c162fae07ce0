package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/peopleops/leaveledger/internal/adapter/http/dto"
	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
)

type timeOffServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateTimeOffInput) (*domain.TimeOff, error)
	approveFn func(ctx context.Context, id string) (*domain.BalanceEntry, error)
	declineFn func(ctx context.Context, id string) error
}

func (s *timeOffServiceStub) Create(ctx context.Context, input usecase.CreateTimeOffInput) (*domain.TimeOff, error) {
	return s.createFn(ctx, input)
}

func (s *timeOffServiceStub) Approve(ctx context.Context, id string) (*domain.BalanceEntry, error) {
	return s.approveFn(ctx, id)
}

func (s *timeOffServiceStub) Decline(ctx context.Context, id string) error {
	return s.declineFn(ctx, id)
}

func TestTimeOffHandler_Create_Success(t *testing.T) {
	startsAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	endsAt := time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC)

	var captured usecase.CreateTimeOffInput
	handler := NewTimeOffHandler(&timeOffServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTimeOffInput) (*domain.TimeOff, error) {
			captured = input
			return &domain.TimeOff{
				ID:         "to-1",
				EmployeeID: input.EmployeeID,
				CategoryID: input.CategoryID,
				StartsAt:   input.StartsAt,
				EndsAt:     input.EndsAt,
				Status:     domain.TimeOffPending,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTimeOffRequest{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.EmployeeID != "emp-1" || !captured.StartsAt.Equal(startsAt) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TimeOffResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "to-1" || resp.Status != string(domain.TimeOffPending) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTimeOffHandler_Create_InvalidPeriod(t *testing.T) {
	handler := NewTimeOffHandler(&timeOffServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTimeOffInput) (*domain.TimeOff, error) {
			return nil, domain.ErrInvalidTimeOffPeriod
		},
	})

	body, _ := json.Marshal(dto.CreateTimeOffRequest{EmployeeID: "emp-1", CategoryID: "cat-1"})
	req := httptest.NewRequest(http.MethodPost, "/time-offs", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTimeOffHandler_Approve_Success(t *testing.T) {
	handler := NewTimeOffHandler(&timeOffServiceStub{
		approveFn: func(ctx context.Context, id string) (*domain.BalanceEntry, error) {
			if id != "to-1" {
				t.Fatalf("expected id to-1, got %s", id)
			}
			return &domain.BalanceEntry{ID: "entry-1", Type: domain.TypeTimeOff, ResourceAmount: -2400}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs/to-1/approve", nil)
	req = setChiURLParam(req, "id", "to-1")
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ResourceAmount != -2400 {
		t.Fatalf("expected consumption of -2400 minutes, got %d", resp.ResourceAmount)
	}
}

func TestTimeOffHandler_Approve_AlreadyProcessed(t *testing.T) {
	handler := NewTimeOffHandler(&timeOffServiceStub{
		approveFn: func(ctx context.Context, id string) (*domain.BalanceEntry, error) {
			return nil, domain.ErrTimeOffAlreadyProcessed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs/to-1/approve", nil)
	req = setChiURLParam(req, "id", "to-1")
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTimeOffHandler_Approve_MissingID(t *testing.T) {
	handler := NewTimeOffHandler(&timeOffServiceStub{
		approveFn: func(ctx context.Context, id string) (*domain.BalanceEntry, error) {
			t.Fatal("Approve should not be called without an ID")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs//approve", nil)
	rec := httptest.NewRecorder()

	handler.Approve(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTimeOffHandler_Decline_Success(t *testing.T) {
	var declined string
	handler := NewTimeOffHandler(&timeOffServiceStub{
		declineFn: func(ctx context.Context, id string) error {
			declined = id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs/to-1/decline", nil)
	req = setChiURLParam(req, "id", "to-1")
	rec := httptest.NewRecorder()

	handler.Decline(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if declined != "to-1" {
		t.Fatalf("expected to-1 to be declined, got %q", declined)
	}
}

func TestTimeOffHandler_Decline_NotFound(t *testing.T) {
	handler := NewTimeOffHandler(&timeOffServiceStub{
		declineFn: func(ctx context.Context, id string) error {
			return domain.ErrTimeOffNotFound
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/time-offs/missing/decline", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Decline(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
