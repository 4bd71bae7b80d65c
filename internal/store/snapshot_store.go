package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eduleaf/gradeflow-api/internal/grading"
)

// ErrSnapshotNotFound indicates no snapshot is stored under the given id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore keeps the current canonical result per review or batch in
// Redis. Every write replaces the previous snapshot wholesale; nothing is
// mutated in place.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSnapshotStore builds a snapshot store with the given TTL.
func NewSnapshotStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "snapshot_store").Logger(),
	}
}

// PutResult stores the canonical result for a review id, replacing any prior
// snapshot.
func (s *SnapshotStore) PutResult(ctx context.Context, reviewID string, result grading.GradeResult) error {
	return s.put(ctx, reviewKey(reviewID), result)
}

// GetResult loads the current snapshot for a review id.
func (s *SnapshotStore) GetResult(ctx context.Context, reviewID string) (grading.GradeResult, error) {
	var result grading.GradeResult
	err := s.get(ctx, reviewKey(reviewID), &result)
	return result, err
}

// PutBatch stores the canonical batch result for a batch id.
func (s *SnapshotStore) PutBatch(ctx context.Context, batchID string, batch grading.BatchResult) error {
	return s.put(ctx, batchKey(batchID), batch)
}

// GetBatch loads the current snapshot for a batch id.
func (s *SnapshotStore) GetBatch(ctx context.Context, batchID string) (grading.BatchResult, error) {
	var batch grading.BatchResult
	err := s.get(ctx, batchKey(batchID), &batch)
	return batch, err
}

func (s *SnapshotStore) put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(payload)).Msg("snapshot stored")
	return nil
}

func (s *SnapshotStore) get(ctx context.Context, key string, target any) error {
	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}

func reviewKey(id string) string { return "review:" + id }
func batchKey(id string) string  { return "batch:" + id }
