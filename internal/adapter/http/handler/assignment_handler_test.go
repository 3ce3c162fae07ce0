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

type assignmentServiceStub struct {
	createFn  func(ctx context.Context, input usecase.CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error)
	updateFn  func(ctx context.Context, id string, newEffectiveAt time.Time) (*domain.EmployeeTimeOffPolicy, error)
	destroyFn func(ctx context.Context, id string) error
}

func (s *assignmentServiceStub) Create(ctx context.Context, input usecase.CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error) {
	return s.createFn(ctx, input)
}

func (s *assignmentServiceStub) Update(ctx context.Context, id string, newEffectiveAt time.Time) (*domain.EmployeeTimeOffPolicy, error) {
	return s.updateFn(ctx, id, newEffectiveAt)
}

func (s *assignmentServiceStub) Destroy(ctx context.Context, id string) error {
	return s.destroyFn(ctx, id)
}

func TestAssignmentHandler_Create_Success(t *testing.T) {
	effectiveAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var captured usecase.CreateAssignmentInput
	handler := NewAssignmentHandler(&assignmentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error) {
			captured = input
			return &domain.EmployeeTimeOffPolicy{
				ID:          "etop-1",
				EmployeeID:  input.EmployeeID,
				PolicyID:    input.PolicyID,
				EffectiveAt: input.EffectiveAt,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAssignmentRequest{
		EmployeeID:  "emp-1",
		PolicyID:    "pol-1",
		EffectiveAt: effectiveAt,
	})

	req := httptest.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.PolicyID != "pol-1" || !captured.EffectiveAt.Equal(effectiveAt) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AssignmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "etop-1" {
		t.Fatalf("expected assignment etop-1, got %s", resp.ID)
	}
}

func TestAssignmentHandler_Create_NoPolicy(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAssignmentInput) (*domain.EmployeeTimeOffPolicy, error) {
			return nil, domain.ErrPolicyNotFound
		},
	})

	body, _ := json.Marshal(dto.CreateAssignmentRequest{EmployeeID: "emp-1", PolicyID: "missing"})
	req := httptest.NewRequest(http.MethodPost, "/assignments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAssignmentHandler_Update_Success(t *testing.T) {
	newEffectiveAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	handler := NewAssignmentHandler(&assignmentServiceStub{
		updateFn: func(ctx context.Context, id string, got time.Time) (*domain.EmployeeTimeOffPolicy, error) {
			if id != "etop-1" {
				t.Fatalf("expected id etop-1, got %s", id)
			}
			if !got.Equal(newEffectiveAt) {
				t.Fatalf("expected effective at %v, got %v", newEffectiveAt, got)
			}
			return &domain.EmployeeTimeOffPolicy{ID: id, EffectiveAt: got}, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateAssignmentRequest{EffectiveAt: newEffectiveAt})
	req := httptest.NewRequest(http.MethodPut, "/assignments/etop-1", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "etop-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAssignmentHandler_Update_MissingID(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceStub{
		updateFn: func(ctx context.Context, id string, newEffectiveAt time.Time) (*domain.EmployeeTimeOffPolicy, error) {
			t.Fatal("Update should not be called without an ID")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/assignments/", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAssignmentHandler_Destroy_Success(t *testing.T) {
	var destroyed string
	handler := NewAssignmentHandler(&assignmentServiceStub{
		destroyFn: func(ctx context.Context, id string) error {
			destroyed = id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/assignments/etop-1", nil)
	req = setChiURLParam(req, "id", "etop-1")
	rec := httptest.NewRecorder()

	handler.Destroy(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if destroyed != "etop-1" {
		t.Fatalf("expected etop-1 to be destroyed, got %q", destroyed)
	}
}

func TestAssignmentHandler_Destroy_NotFound(t *testing.T) {
	handler := NewAssignmentHandler(&assignmentServiceStub{
		destroyFn: func(ctx context.Context, id string) error {
			return domain.ErrAssignmentNotFound
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/assignments/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Destroy(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
