package usecase

import (
	"context"
	"time"

	"github.com/peopleops/leaveledger/internal/domain"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
)

// CascadeUseCase recomputes running balances after a retroactive change.
// Scheduling is synchronous (entries are flagged inside the triggering
// transaction); the recompute itself runs asynchronously, one job per
// trigger, all-or-nothing per invocation.
type CascadeUseCase struct {
	txManager      TransactionManager
	balanceRepo    BalanceRepository
	timeOffRepo    TimeOffRepository
	assignmentRepo AssignmentRepository
	policyRepo     PolicyRepository
	outboxRepo     OutboxRepository
	queue          JobQueue
	idGen          IDGenerator
	metrics        *metrics.Metrics
	calculator     *BalanceCalculator
	removalCalc    *RemovalAmountCalculator
}

// NewCascadeUseCase creates a new CascadeUseCase.
func NewCascadeUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	timeOffRepo TimeOffRepository,
	assignmentRepo AssignmentRepository,
	policyRepo PolicyRepository,
	outboxRepo OutboxRepository,
	queue JobQueue,
	idGen IDGenerator,
	m *metrics.Metrics,
) *CascadeUseCase {
	return &CascadeUseCase{
		txManager:      txManager,
		balanceRepo:    balanceRepo,
		timeOffRepo:    timeOffRepo,
		assignmentRepo: assignmentRepo,
		policyRepo:     policyRepo,
		outboxRepo:     outboxRepo,
		queue:          queue,
		idGen:          idGen,
		metrics:        m,
		calculator:     NewBalanceCalculator(balanceRepo),
		removalCalc:    NewRemovalAmountCalculator(balanceRepo),
	}
}

// Schedule flags the entries a recompute will touch and enqueues the job.
// It must run inside the transaction that performed the triggering change,
// so concurrent readers see the stale-pending state before the job lands.
// A nil from limits the recompute to the entry itself when it is last in
// its partition.
func (uc *CascadeUseCase) Schedule(ctx context.Context, tx Transaction, entry *domain.BalanceEntry, from *time.Time) error {
	start := entry.EffectiveAt
	if from != nil && from.Before(start) {
		start = *from
	}

	ids := []string{entry.ID}

	last, err := uc.balanceRepo.Last(ctx, tx, entry.EmployeeID, entry.CategoryID)
	if err != nil {
		return err
	}

	if from != nil || last == nil || last.ID != entry.ID {
		later, err := uc.balanceRepo.ListFrom(ctx, tx, entry.EmployeeID, entry.CategoryID, start)
		if err != nil {
			return err
		}

		ids = ids[:0]
		for _, e := range later {
			ids = append(ids, e.ID)
		}
	}

	if err := uc.balanceRepo.SetProcessing(ctx, tx, ids, true); err != nil {
		return err
	}

	if entry.TimeOffID != nil {
		if err := uc.timeOffRepo.SetProcessing(ctx, tx, *entry.TimeOffID, true); err != nil {
			return err
		}
	}

	return uc.queue.Enqueue(ctx, domain.RecomputeJob{
		EntryID:    entry.ID,
		EmployeeID: entry.EmployeeID,
		CategoryID: entry.CategoryID,
		From:       from,
		EnqueuedAt: time.Now().UTC(),
	})
}

// ScheduleFrom enqueues a partition recompute that is not anchored to a
// surviving entry, e.g. after a deletion. Every entry from the given date
// on is flagged and recomputed.
func (uc *CascadeUseCase) ScheduleFrom(ctx context.Context, tx Transaction, employeeID, categoryID string, from time.Time) error {
	later, err := uc.balanceRepo.ListFrom(ctx, tx, employeeID, categoryID, from)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(later))
	for _, e := range later {
		ids = append(ids, e.ID)
	}

	if err := uc.balanceRepo.SetProcessing(ctx, tx, ids, true); err != nil {
		return err
	}

	return uc.queue.Enqueue(ctx, domain.RecomputeJob{
		EmployeeID: employeeID,
		CategoryID: categoryID,
		From:       &from,
		EnqueuedAt: time.Now().UTC(),
	})
}

// Run executes one recompute job inside a single transaction. Entries are
// recomputed strictly in ascending effective_at order; later balances
// depend on earlier recomputed ones. Entries deleted since the job was
// queued are skipped. Any failure rolls back the whole job so no partial
// chain is ever visible; the queue retries it.
func (uc *CascadeUseCase) Run(ctx context.Context, job domain.RecomputeJob) error {
	start := time.Now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var trigger *domain.BalanceEntry
	if job.EntryID != "" {
		trigger, err = uc.balanceRepo.GetByIDTx(ctx, tx, job.EntryID)
		if err != nil {
			return err
		}
	}

	if trigger == nil && job.From == nil {
		// Trigger deleted before the job ran and no explicit window: the
		// deletion path schedules its own recompute, nothing to do here.
		return tx.Commit(ctx)
	}

	entries, err := uc.collect(ctx, tx, trigger, job)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := uc.recompute(ctx, tx, entry); err != nil {
			return err
		}
	}

	if len(entries) > 0 {
		if err := uc.recordCompleted(ctx, tx, job, len(entries)); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.CascadeRuns.Inc()
		uc.metrics.CascadeDuration.Observe(time.Since(start).Seconds())
		uc.metrics.CascadeRecompute.Observe(float64(len(entries)))
	}

	return nil
}

// collect resolves the ordered set of entries this job must recompute.
func (uc *CascadeUseCase) collect(ctx context.Context, tx Transaction, trigger *domain.BalanceEntry, job domain.RecomputeJob) ([]*domain.BalanceEntry, error) {
	if trigger != nil && job.From == nil {
		last, err := uc.balanceRepo.Last(ctx, tx, trigger.EmployeeID, trigger.CategoryID)
		if err != nil {
			return nil, err
		}
		if last != nil && last.ID == trigger.ID {
			return []*domain.BalanceEntry{trigger}, nil
		}
	}

	start := time.Time{}
	if trigger != nil {
		start = trigger.EffectiveAt
	}
	if job.From != nil && (start.IsZero() || job.From.Before(start)) {
		start = *job.From
	}

	return uc.balanceRepo.ListFrom(ctx, tx, job.EmployeeID, job.CategoryID, start)
}

// recompute settles one entry: removals get their deduction re-derived
// first (a retroactive change upstream can alter how much of the addition
// is left to expire), then the running balance is recalculated and the
// processing flags cleared.
func (uc *CascadeUseCase) recompute(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) error {
	if entry.Type == domain.TypeRemoval {
		additions, err := uc.balanceRepo.AdditionsForRemoval(ctx, tx, entry.ID)
		if err != nil {
			return err
		}

		if len(additions) > 0 {
			kind, err := uc.policyKindAt(ctx, tx, entry)
			if err != nil {
				return err
			}

			amount, err := uc.removalCalc.Compute(ctx, tx, entry, additions, kind)
			if err != nil {
				return err
			}

			entry.ResourceAmount = amount
		}
	}

	if err := uc.calculator.Compute(ctx, tx, entry); err != nil {
		return err
	}

	entry.BeingProcessed = false
	entry.UpdatedAt = time.Now().UTC()

	if err := uc.balanceRepo.Update(ctx, tx, entry); err != nil {
		return err
	}

	if entry.TimeOffID != nil {
		if err := uc.timeOffRepo.SetProcessing(ctx, tx, *entry.TimeOffID, false); err != nil {
			return err
		}
	}

	return nil
}

func (uc *CascadeUseCase) policyKindAt(ctx context.Context, tx Transaction, entry *domain.BalanceEntry) (domain.PolicyKind, error) {
	assignment, err := uc.assignmentRepo.ActiveAt(ctx, tx, entry.EmployeeID, entry.CategoryID, entry.EffectiveAt)
	if err != nil {
		return "", err
	}
	if assignment == nil {
		// No coverage at the removal date; treat as balancer so the
		// deduction stays derived from the linked additions.
		return domain.PolicyBalancer, nil
	}

	policy, err := uc.policyRepo.GetByID(ctx, assignment.PolicyID)
	if err != nil {
		return "", err
	}

	return policy.Kind, nil
}

func (uc *CascadeUseCase) recordCompleted(ctx context.Context, tx Transaction, job domain.RecomputeJob, recomputed int) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   job.EmployeeID,
		AggregateType: domain.AggregateTypeBalance,
		EventType:     domain.EventTypeCascadeCompleted,
		Payload: domain.CascadeCompletedEvent{
			TriggerBalanceID: job.EntryID,
			EmployeeID:       job.EmployeeID,
			CategoryID:       job.CategoryID,
			Recomputed:       recomputed,
		},
		CreatedAt: time.Now().UTC(),
	})
}
