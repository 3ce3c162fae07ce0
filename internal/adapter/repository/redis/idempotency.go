package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker locks a key while the first request is still in flight.
const pendingMarker = "processing"

// IdempotencyStore deduplicates mutating API requests. Time-off and
// assignment creation retries replay the stored response instead of
// writing a second ledger entry.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "leaveledger:idem:",
	}
}

func (s *IdempotencyStore) keyFor(key string) string {
	return s.prefix + key
}

// CheckAndSet returns the stored response when the key was seen before.
// Otherwise it claims the key: with a response it stores it directly,
// without one it sets a pending marker so concurrent retries wait for
// the first writer.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.keyFor(key)

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, existing, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	set, err := s.client.SetNX(ctx, fullKey, pendingMarker, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !set {
		// Lost the race; hand back whatever the winner stored.
		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, nil, err
		}
		return true, existing, nil
	}

	return false, nil, nil
}

// Update replaces the pending marker with the final response once the
// request has committed.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.keyFor(key), response, ttl).Err()
}

// Delete drops the key, releasing the claim after a failed request.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyFor(key)).Err()
}
