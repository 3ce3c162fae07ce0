package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
	"github.com/peopleops/leaveledger/internal/usecase/mocks"
)

type timeOffFixture struct {
	balanceRepo *mocks.MockBalanceRepository
	timeOffRepo *mocks.MockTimeOffRepository
	queue       *mocks.MockJobQueue
	uc          *usecase.TimeOffUseCase
}

func newTimeOffFixture() *timeOffFixture {
	f := &timeOffFixture{
		balanceRepo: mocks.NewMockBalanceRepository(),
		timeOffRepo: mocks.NewMockTimeOffRepository(),
		queue:       mocks.NewMockJobQueue(),
	}

	employeeRepo := mocks.NewMockEmployeeRepository()
	employeeRepo.Seed(&domain.Employee{
		ID:        "emp-1",
		AccountID: "acct-1",
		HiredAt:   time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	policyRepo := mocks.NewMockPolicyRepository()
	policyRepo.Seed(&domain.TimeOffPolicy{
		ID: "pol-1", AccountID: "acct-1", CategoryID: "cat-1",
		Kind: domain.PolicyBalancer, Amount: 9600, PeriodYears: 1,
	})

	assignmentRepo := mocks.NewMockAssignmentRepository()
	assignmentRepo.Seed(&domain.EmployeeTimeOffPolicy{
		ID: "etop-1", EmployeeID: "emp-1", PolicyID: "pol-1", CategoryID: "cat-1",
		EffectiveAt: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	outboxRepo := mocks.NewMockOutboxRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	creation := usecase.NewBalanceCreationUseCase(
		f.balanceRepo, employeeRepo, assignmentRepo, policyRepo, outboxRepo, idGen, nil,
	)
	cascade := usecase.NewCascadeUseCase(
		txManager, f.balanceRepo, f.timeOffRepo, assignmentRepo, policyRepo,
		outboxRepo, f.queue, idGen, nil,
	)
	f.uc = usecase.NewTimeOffUseCase(
		txManager, f.timeOffRepo, f.balanceRepo, employeeRepo, outboxRepo,
		idGen, creation, cascade, nil,
	)
	return f
}

func TestTimeOff_CreateRejectsInvertedPeriod(t *testing.T) {
	f := newTimeOffFixture()

	_, err := f.uc.Create(context.Background(), usecase.CreateTimeOffInput{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   time.Date(2017, 3, 5, 0, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2017, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != domain.ErrInvalidTimeOffPeriod {
		t.Errorf("error = %v, want ErrInvalidTimeOffPeriod", err)
	}
}

func TestTimeOff_ApproveWritesConsumption(t *testing.T) {
	f := newTimeOffFixture()

	startsAt := time.Date(2017, 3, 1, 9, 0, 0, 0, time.UTC)
	endsAt := time.Date(2017, 3, 3, 9, 0, 0, 0, time.UTC)

	timeOff, err := f.uc.Create(context.Background(), usecase.CreateTimeOffInput{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	entry, err := f.uc.Approve(context.Background(), timeOff.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if !entry.EffectiveAt.Equal(endsAt) {
		t.Errorf("effective_at = %v, want the raw end timestamp %v", entry.EffectiveAt, endsAt)
	}
	// Two days at 1440 minutes each.
	if entry.ResourceAmount != -2880 {
		t.Errorf("resource_amount = %d, want -2880", entry.ResourceAmount)
	}
	if entry.TimeOffID == nil || *entry.TimeOffID != timeOff.ID {
		t.Error("entry must link back to its time off")
	}

	stored, _ := f.timeOffRepo.GetByID(context.Background(), timeOff.ID)
	if stored.Status != domain.TimeOffApproved {
		t.Errorf("status = %s, want approved", stored.Status)
	}

	if jobs := f.queue.Jobs(); len(jobs) != 1 {
		t.Errorf("expected one recompute job, got %d", len(jobs))
	}
}

func TestTimeOff_ApproveTwice(t *testing.T) {
	f := newTimeOffFixture()

	timeOff, _ := f.uc.Create(context.Background(), usecase.CreateTimeOffInput{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   time.Date(2017, 3, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2017, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	if _, err := f.uc.Approve(context.Background(), timeOff.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if _, err := f.uc.Approve(context.Background(), timeOff.ID); err != domain.ErrTimeOffAlreadyProcessed {
		t.Errorf("second approve error = %v, want ErrTimeOffAlreadyProcessed", err)
	}
}

func TestTimeOff_DeclineApprovedRemovesEntry(t *testing.T) {
	f := newTimeOffFixture()

	timeOff, _ := f.uc.Create(context.Background(), usecase.CreateTimeOffInput{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   time.Date(2017, 3, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2017, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	entry, err := f.uc.Approve(context.Background(), timeOff.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := f.uc.Decline(context.Background(), timeOff.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	if _, err := f.balanceRepo.GetByID(context.Background(), entry.ID); err != domain.ErrBalanceNotFound {
		t.Errorf("expected consumption entry deleted, got %v", err)
	}

	stored, _ := f.timeOffRepo.GetByID(context.Background(), timeOff.ID)
	if stored.Status != domain.TimeOffDeclined {
		t.Errorf("status = %s, want declined", stored.Status)
	}

	// One job from the approval, one windowed job from the decline.
	jobs := f.queue.Jobs()
	if len(jobs) != 2 || jobs[1].From == nil {
		t.Fatalf("expected a windowed recompute after decline, got %v", jobs)
	}
}

func TestTimeOff_DeclinePendingOnlyFlipsStatus(t *testing.T) {
	f := newTimeOffFixture()

	timeOff, _ := f.uc.Create(context.Background(), usecase.CreateTimeOffInput{
		EmployeeID: "emp-1",
		CategoryID: "cat-1",
		StartsAt:   time.Date(2017, 3, 1, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2017, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	if err := f.uc.Decline(context.Background(), timeOff.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	if jobs := f.queue.Jobs(); len(jobs) != 0 {
		t.Errorf("pending decline must not touch the ledger, got %d jobs", len(jobs))
	}
}
