package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/usecase"
	"github.com/peopleops/leaveledger/internal/usecase/mocks"
)

type creationFixture struct {
	balanceRepo    *mocks.MockBalanceRepository
	employeeRepo   *mocks.MockEmployeeRepository
	assignmentRepo *mocks.MockAssignmentRepository
	policyRepo     *mocks.MockPolicyRepository
	outboxRepo     *mocks.MockOutboxRepository
	uc             *usecase.BalanceCreationUseCase
}

func newCreationFixture(kind domain.PolicyKind) *creationFixture {
	f := &creationFixture{
		balanceRepo:    mocks.NewMockBalanceRepository(),
		employeeRepo:   mocks.NewMockEmployeeRepository(),
		assignmentRepo: mocks.NewMockAssignmentRepository(),
		policyRepo:     mocks.NewMockPolicyRepository(),
		outboxRepo:     mocks.NewMockOutboxRepository(),
	}

	f.employeeRepo.Seed(&domain.Employee{
		ID:        "emp-1",
		AccountID: "acct-1",
		HiredAt:   time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	f.policyRepo.Seed(&domain.TimeOffPolicy{
		ID:          "pol-1",
		AccountID:   "acct-1",
		CategoryID:  "cat-1",
		Kind:        kind,
		Amount:      9600,
		PeriodYears: 1,
		EndDay:      1,
		EndMonth:    time.April,
	})
	f.assignmentRepo.Seed(&domain.EmployeeTimeOffPolicy{
		ID:          "etop-1",
		EmployeeID:  "emp-1",
		PolicyID:    "pol-1",
		CategoryID:  "cat-1",
		EffectiveAt: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	f.uc = usecase.NewBalanceCreationUseCase(
		f.balanceRepo,
		f.employeeRepo,
		f.assignmentRepo,
		f.policyRepo,
		f.outboxRepo,
		mocks.NewMockIDGenerator(),
		nil,
	)
	return f
}

func TestBalanceCreation_Addition(t *testing.T) {
	f := newCreationFixture(domain.PolicyBalancer)

	day := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	entry, err := f.uc.Create(context.Background(), &mocks.MockTransaction{}, usecase.CreateBalanceInput{
		EmployeeID:     "emp-1",
		CategoryID:     "cat-1",
		AccountID:      "acct-1",
		Type:           domain.TypeAddition,
		ResourceAmount: 9600,
		EffectiveDay:   &day,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantAt := day.Add(domain.AdditionOffset)
	if !entry.EffectiveAt.Equal(wantAt) {
		t.Errorf("effective_at = %v, want %v", entry.EffectiveAt, wantAt)
	}
	if entry.Balance != 9600 {
		t.Errorf("balance = %d, want 9600", entry.Balance)
	}

	wantValidity := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC).Add(domain.RemovalOffset)
	if entry.ValidityDate == nil || !entry.ValidityDate.Equal(wantValidity) {
		t.Errorf("validity = %v, want %v", entry.ValidityDate, wantValidity)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 || events[0].EventType != domain.EventTypeBalanceCreated {
		t.Fatalf("expected one balance.created event, got %v", events)
	}
	payload, ok := events[0].Payload.(domain.BalanceCreatedEvent)
	if !ok {
		t.Fatalf("payload = %T, want domain.BalanceCreatedEvent", events[0].Payload)
	}
	if payload.BalanceID != entry.ID || payload.Amount != 9600 || payload.BalanceType != string(domain.TypeAddition) {
		t.Errorf("unexpected event payload %+v", payload)
	}
}

func TestBalanceCreation_LateAdditionJoinsExistingRemoval(t *testing.T) {
	f := newCreationFixture(domain.PolicyBalancer)

	// The expiry window is already settled: a removal sits at the Apr 1
	// validity slot.
	removalAt := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC).Add(domain.RemovalOffset)
	removal := entryAt("rem-1", removalAt, -9600, 0)
	removal.Type = domain.TypeRemoval
	f.balanceRepo.Seed(removal)

	day := time.Date(2016, 1, 15, 0, 0, 0, 0, time.UTC)
	entry, err := f.uc.Create(context.Background(), &mocks.MockTransaction{}, usecase.CreateBalanceInput{
		EmployeeID:     "emp-1",
		CategoryID:     "cat-1",
		AccountID:      "acct-1",
		Type:           domain.TypeAddition,
		ResourceAmount: 1200,
		EffectiveDay:   &day,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ValidityDate == nil || !entry.ValidityDate.Equal(removalAt) {
		t.Fatalf("validity = %v, want %v", entry.ValidityDate, removalAt)
	}
	if entry.BalanceCreditRemovalID == nil || *entry.BalanceCreditRemovalID != "rem-1" {
		t.Errorf("credit removal = %v, want rem-1", entry.BalanceCreditRemovalID)
	}

	// The cascade picks the late addition up through the removal linkage.
	additions, err := f.balanceRepo.AdditionsForRemoval(context.Background(), &mocks.MockTransaction{}, "rem-1")
	if err != nil {
		t.Fatalf("additions for removal: %v", err)
	}
	if len(additions) != 1 || additions[0].ID != entry.ID {
		t.Errorf("linked additions = %v, want the late addition only", additions)
	}
}

func TestBalanceCreation_Errors(t *testing.T) {
	day := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	validity := time.Date(2017, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		kind    domain.PolicyKind
		seed    func(f *creationFixture)
		input   usecase.CreateBalanceInput
		want    error
		wantVal bool
	}{
		{
			name: "duplicate effective time",
			kind: domain.PolicyBalancer,
			seed: func(f *creationFixture) {
				f.balanceRepo.Seed(entryAt("e-1", day.Add(domain.AdditionOffset), 100, 100))
			},
			input: usecase.CreateBalanceInput{
				EmployeeID: "emp-1", CategoryID: "cat-1", AccountID: "acct-1",
				Type: domain.TypeAddition, ResourceAmount: 9600, EffectiveDay: &day,
			},
			want: domain.ErrDuplicateEffectiveAt,
		},
		{
			name: "no policy assigned for category",
			kind: domain.PolicyBalancer,
			input: usecase.CreateBalanceInput{
				EmployeeID: "emp-1", CategoryID: "cat-other", AccountID: "acct-1",
				Type: domain.TypeAddition, ResourceAmount: 9600, EffectiveDay: &day,
			},
			want: domain.ErrNoPolicyAssigned,
		},
		{
			name: "counter policy rejects a validity date",
			kind: domain.PolicyCounter,
			input: usecase.CreateBalanceInput{
				EmployeeID: "emp-1", CategoryID: "cat-1", AccountID: "acct-1",
				Type: domain.TypeAddition, ResourceAmount: 9600, EffectiveDay: &day,
				ValidityDate: &validity,
			},
			wantVal: true,
		},
		{
			name: "account mismatch",
			kind: domain.PolicyBalancer,
			input: usecase.CreateBalanceInput{
				EmployeeID: "emp-1", CategoryID: "cat-1", AccountID: "acct-other",
				Type: domain.TypeAddition, ResourceAmount: 9600, EffectiveDay: &day,
			},
			wantVal: true,
		},
		{
			name: "effective date before hire",
			kind: domain.PolicyBalancer,
			input: usecase.CreateBalanceInput{
				EmployeeID: "emp-1", CategoryID: "cat-1", AccountID: "acct-1",
				Type: domain.TypeAddition, ResourceAmount: 9600,
				EffectiveDay: func() *time.Time { d := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC); return &d }(),
			},
			wantVal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCreationFixture(tt.kind)
			if tt.seed != nil {
				tt.seed(f)
			}

			_, err := f.uc.Create(context.Background(), &mocks.MockTransaction{}, tt.input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if tt.wantVal && !domain.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestBalanceCreation_RemovalPairing(t *testing.T) {
	f := newCreationFixture(domain.PolicyBalancer)

	validity := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC).Add(domain.RemovalOffset)
	addition := entryAt("add-1", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC).Add(domain.AdditionOffset), 9600, 9600)
	addition.ValidityDate = &validity
	f.balanceRepo.Seed(addition)

	removalAt := validity
	entry, err := f.uc.Create(context.Background(), &mocks.MockTransaction{}, usecase.CreateBalanceInput{
		EmployeeID:        "emp-1",
		CategoryID:        "cat-1",
		AccountID:         "acct-1",
		Type:              domain.TypeRemoval,
		EffectiveAt:       &removalAt,
		CreditAdditionIDs: []string{"add-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ResourceAmount != -9600 {
		t.Errorf("removal amount = %d, want -9600", entry.ResourceAmount)
	}
	if entry.Balance != 0 {
		t.Errorf("post-removal balance = %d, want 0", entry.Balance)
	}
	if addition.BalanceCreditRemovalID == nil || *addition.BalanceCreditRemovalID != entry.ID {
		t.Error("addition must point back at its removal")
	}
}

func TestBalanceCreation_RemovalOffValidityDate(t *testing.T) {
	f := newCreationFixture(domain.PolicyBalancer)

	validity := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC).Add(domain.RemovalOffset)
	addition := entryAt("add-1", time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC).Add(domain.AdditionOffset), 9600, 9600)
	addition.ValidityDate = &validity
	f.balanceRepo.Seed(addition)

	wrongAt := time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC).Add(domain.RemovalOffset)
	_, err := f.uc.Create(context.Background(), &mocks.MockTransaction{}, usecase.CreateBalanceInput{
		EmployeeID:        "emp-1",
		CategoryID:        "cat-1",
		AccountID:         "acct-1",
		Type:              domain.TypeRemoval,
		EffectiveAt:       &wrongAt,
		CreditAdditionIDs: []string{"add-1"},
	})
	if !domain.IsValidation(err) {
		t.Errorf("expected a validation error, got %v", err)
	}
}
