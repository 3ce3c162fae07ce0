package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	postgresrepo "github.com/peopleops/leaveledger/internal/adapter/repository/postgres"
	redisrepo "github.com/peopleops/leaveledger/internal/adapter/repository/redis"
	infraredis "github.com/peopleops/leaveledger/internal/infrastructure/redis"
	"github.com/peopleops/leaveledger/internal/usecase"
	"github.com/peopleops/leaveledger/tests/testutil"
)

// stack wires the full use case graph against a live database and Redis,
// the same way cmd/server does.
type stack struct {
	Balances    *usecase.BalanceUseCase
	TimeOffs    *usecase.TimeOffUseCase
	Assignments *usecase.AssignmentUseCase
	ContractEnd *usecase.ContractEndUseCase
	Overview    *usecase.OverviewUseCase
	Cascade     *usecase.CascadeUseCase
	Queue       *redisrepo.JobQueue
	OutboxRepo  *postgresrepo.OutboxRepository
	BalanceRepo *postgresrepo.BalanceRepository
}

func newStack(t *testing.T, db *testutil.TestDB) *stack {
	t.Helper()

	ctx := context.Background()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	pool := db.Pool
	txManager := postgresrepo.NewTxManager(pool)
	balanceRepo := postgresrepo.NewBalanceRepository(pool)
	timeOffRepo := postgresrepo.NewTimeOffRepository(pool)
	assignmentRepo := postgresrepo.NewAssignmentRepository(pool)
	employeeRepo := postgresrepo.NewEmployeeRepository(pool)
	policyRepo := postgresrepo.NewPolicyRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	idGen := postgresrepo.NewULIDGenerator()

	// One queue key per test so parallel runs do not steal each other's jobs.
	queue := redisrepo.NewJobQueue(redisClient, "recompute:test:"+ulid.Make().String())

	creation := usecase.NewBalanceCreationUseCase(balanceRepo, employeeRepo, assignmentRepo, policyRepo, outboxRepo, idGen, nil)
	cascade := usecase.NewCascadeUseCase(txManager, balanceRepo, timeOffRepo, assignmentRepo, policyRepo, outboxRepo, queue, idGen, nil)
	balances := usecase.NewBalanceUseCase(txManager, balanceRepo, creation, cascade)
	timeOffs := usecase.NewTimeOffUseCase(txManager, timeOffRepo, balanceRepo, employeeRepo, outboxRepo, idGen, creation, cascade, nil)
	assignments := usecase.NewAssignmentUseCase(txManager, assignmentRepo, policyRepo, employeeRepo, balanceRepo, outboxRepo, idGen, creation, cascade, nil)
	contractEnd := usecase.NewContractEndUseCase(txManager, employeeRepo, assignmentRepo, timeOffRepo, balanceRepo, policyRepo, outboxRepo, idGen, creation, cascade, nil)
	overview := usecase.NewOverviewUseCase(balanceRepo, assignmentRepo, policyRepo, employeeRepo, nil, 480)

	return &stack{
		Balances:    balances,
		TimeOffs:    timeOffs,
		Assignments: assignments,
		ContractEnd: contractEnd,
		Overview:    overview,
		Cascade:     cascade,
		Queue:       queue,
		OutboxRepo:  outboxRepo,
		BalanceRepo: balanceRepo,
	}
}

// drainJobs runs queued recompute jobs to completion.
func (s *stack) drainJobs(t *testing.T, ctx context.Context) {
	t.Helper()

	for {
		job, err := s.Queue.Dequeue(ctx, 500*time.Millisecond)
		if err != nil {
			t.Fatalf("failed to dequeue job: %v", err)
		}
		if job == nil {
			return
		}
		if err := s.Cascade.Run(ctx, *job); err != nil {
			t.Fatalf("failed to run recompute job: %v", err)
		}
	}
}
