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
)

type contractEndServiceStub struct {
	applyFn  func(ctx context.Context, employeeID string, contractEndAt time.Time) error
	moveFn   func(ctx context.Context, employeeID string, newContractEndAt time.Time) error
	removeFn func(ctx context.Context, employeeID string) error
}

func (s *contractEndServiceStub) Apply(ctx context.Context, employeeID string, contractEndAt time.Time) error {
	return s.applyFn(ctx, employeeID, contractEndAt)
}

func (s *contractEndServiceStub) Move(ctx context.Context, employeeID string, newContractEndAt time.Time) error {
	return s.moveFn(ctx, employeeID, newContractEndAt)
}

func (s *contractEndServiceStub) Remove(ctx context.Context, employeeID string) error {
	return s.removeFn(ctx, employeeID)
}

func TestContractEndHandler_Apply_Success(t *testing.T) {
	endAt := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	var gotEmployee string
	var gotEnd time.Time
	handler := NewContractEndHandler(&contractEndServiceStub{
		applyFn: func(ctx context.Context, employeeID string, contractEndAt time.Time) error {
			gotEmployee = employeeID
			gotEnd = contractEndAt
			return nil
		},
	})

	body, _ := json.Marshal(dto.ContractEndRequest{ContractEndAt: endAt})
	req := httptest.NewRequest(http.MethodPost, "/employees/emp-1/contract-end", bytes.NewReader(body))
	req = setChiURLParam(req, "employeeID", "emp-1")
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotEmployee != "emp-1" || !gotEnd.Equal(endAt) {
		t.Fatalf("expected emp-1 at %v, got %s at %v", endAt, gotEmployee, gotEnd)
	}
}

func TestContractEndHandler_Apply_EmployeeNotFound(t *testing.T) {
	handler := NewContractEndHandler(&contractEndServiceStub{
		applyFn: func(ctx context.Context, employeeID string, contractEndAt time.Time) error {
			return domain.ErrEmployeeNotFound
		},
	})

	body, _ := json.Marshal(dto.ContractEndRequest{ContractEndAt: time.Now()})
	req := httptest.NewRequest(http.MethodPost, "/employees/missing/contract-end", bytes.NewReader(body))
	req = setChiURLParam(req, "employeeID", "missing")
	rec := httptest.NewRecorder()

	handler.Apply(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContractEndHandler_Move_Success(t *testing.T) {
	newEnd := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	var gotEnd time.Time
	handler := NewContractEndHandler(&contractEndServiceStub{
		moveFn: func(ctx context.Context, employeeID string, newContractEndAt time.Time) error {
			gotEnd = newContractEndAt
			return nil
		},
	})

	body, _ := json.Marshal(dto.ContractEndRequest{ContractEndAt: newEnd})
	req := httptest.NewRequest(http.MethodPut, "/employees/emp-1/contract-end", bytes.NewReader(body))
	req = setChiURLParam(req, "employeeID", "emp-1")
	rec := httptest.NewRecorder()

	handler.Move(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !gotEnd.Equal(newEnd) {
		t.Fatalf("expected new end %v, got %v", newEnd, gotEnd)
	}
}

func TestContractEndHandler_Move_NoContractEnd(t *testing.T) {
	handler := NewContractEndHandler(&contractEndServiceStub{
		moveFn: func(ctx context.Context, employeeID string, newContractEndAt time.Time) error {
			return domain.ErrContractEndNotFound
		},
	})

	body, _ := json.Marshal(dto.ContractEndRequest{ContractEndAt: time.Now()})
	req := httptest.NewRequest(http.MethodPut, "/employees/emp-1/contract-end", bytes.NewReader(body))
	req = setChiURLParam(req, "employeeID", "emp-1")
	rec := httptest.NewRecorder()

	handler.Move(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContractEndHandler_Remove_Success(t *testing.T) {
	var removed string
	handler := NewContractEndHandler(&contractEndServiceStub{
		removeFn: func(ctx context.Context, employeeID string) error {
			removed = employeeID
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/employees/emp-1/contract-end", nil)
	req = setChiURLParam(req, "employeeID", "emp-1")
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if removed != "emp-1" {
		t.Fatalf("expected emp-1, got %q", removed)
	}
}

func TestContractEndHandler_Remove_MissingEmployeeID(t *testing.T) {
	handler := NewContractEndHandler(&contractEndServiceStub{
		removeFn: func(ctx context.Context, employeeID string) error {
			t.Fatal("Remove should not be called without an employee ID")
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/employees//contract-end", nil)
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
