package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"asap/models"

	"github.com/go-redis/redis/v8"
)

// ResultStore keeps checkout results around for polling after the hosted UI
// redirects the customer back.
type ResultStore interface {
	Save(ctx context.Context, checkoutID string, result *models.CheckoutResult) error
	Load(ctx context.Context, checkoutID string) (*models.CheckoutResult, error)
}

// ErrResultNotFound is returned when no result exists for a checkout ID.
var ErrResultNotFound = fmt.Errorf("checkout result not found")

// RedisResultStore stores results as JSON with a TTL, the same way booking
// sessions are cached.
type RedisResultStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *RedisResultStore) key(id string) string { return "checkout:result:" + id }

func (s *RedisResultStore) Save(ctx context.Context, checkoutID string, result *models.CheckoutResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout result: %w", err)
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return s.Client.Set(ctx, s.key(checkoutID), data, ttl).Err()
}

func (s *RedisResultStore) Load(ctx context.Context, checkoutID string) (*models.CheckoutResult, error) {
	data, err := s.Client.Get(ctx, s.key(checkoutID)).Result()
	if err == redis.Nil {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	var result models.CheckoutResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to parse checkout result: %w", err)
	}
	return &result, nil
}

// MemoryResultStore is an in-process store for tests.
type MemoryResultStore struct {
	mu      sync.Mutex
	results map[string]*models.CheckoutResult
}

func NewMemoryResultStore() *MemoryResultStore {
	return &MemoryResultStore{results: make(map[string]*models.CheckoutResult)}
}

func (s *MemoryResultStore) Save(_ context.Context, checkoutID string, result *models.CheckoutResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	s.results[checkoutID] = &copied
	return nil
}

func (s *MemoryResultStore) Load(_ context.Context, checkoutID string) (*models.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[checkoutID]
	if !ok {
		return nil, ErrResultNotFound
	}
	copied := *result
	return &copied, nil
}
