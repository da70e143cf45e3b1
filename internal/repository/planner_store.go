package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PlannerStore persists planner drafts, fingerprints and identity in Redis.
// It implements planner.Store: failures degrade to cache-miss/no-op and are
// only logged, never surfaced, since submitted bookings remain the durable
// system of record.
type PlannerStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewPlannerStore wraps a Redis client. ttl of zero keeps entries forever.
func NewPlannerStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *PlannerStore {
	return &PlannerStore{client: client, ttl: ttl, logger: logger}
}

func (s *PlannerStore) Get(key string) ([]byte, bool) {
	v, err := s.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("planner store read failed")
		return nil, false
	}
	return v, true
}

func (s *PlannerStore) Set(key string, value []byte) {
	if err := s.client.Set(context.Background(), key, value, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("planner store write failed")
	}
}

func (s *PlannerStore) Remove(key string) {
	if err := s.client.Del(context.Background(), key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("planner store delete failed")
	}
}
