package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peopleops/leaveledger/internal/domain"
)

// DefaultQueueKey is the list the recompute worker consumes from.
const DefaultQueueKey = "recompute:jobs"

// JobQueue implements usecase.JobQueue on a Redis list. Enqueue pushes to the
// head; the worker pops from the tail, so jobs are delivered in order.
type JobQueue struct {
	client *redis.Client
	key    string
}

// NewJobQueue creates a new JobQueue. An empty key falls back to
// DefaultQueueKey.
func NewJobQueue(client *redis.Client, key string) *JobQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &JobQueue{
		client: client,
		key:    key,
	}
}

// Enqueue pushes a recompute job onto the queue.
func (q *JobQueue) Enqueue(ctx context.Context, job domain.RecomputeJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Dequeue blocks up to timeout for the next job. It returns (nil, nil) when
// the wait times out with nothing to do.
func (q *JobQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.RecomputeJob, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	// BRPOP returns the key and the popped value.
	if len(res) != 2 {
		return nil, nil
	}

	var job domain.RecomputeJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Len reports the number of pending jobs.
func (q *JobQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
