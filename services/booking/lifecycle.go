package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"asap/models"
	"asap/platform"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ListCache caches serialized operator booking lists keyed by scope.
type ListCache interface {
	Get(ctx context.Context, key string) (data string, ok bool, err error)
	Set(ctx context.Context, key, data string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisListCache backs the booking-list cache with redis.
type RedisListCache struct {
	Client *redis.Client
}

func (c *RedisListCache) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := c.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (c *RedisListCache) Set(ctx context.Context, key, data string, ttl time.Duration) error {
	return c.Client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisListCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// DefaultLifecycleManager applies operator transitions to fetched bookings.
// The platform's response is authoritative: every mutation replaces only the
// targeted booking with the server copy, never a locally guessed one.
type DefaultLifecycleManager struct {
	Platform platform.Client
	Cache    ListCache // optional booking-list cache
	CacheTTL time.Duration
	Logger   *zap.Logger

	mu       sync.Mutex
	bookings map[string]models.Booking
	cached   map[string]struct{} // cache keys written, invalidated on mutation
}

func NewLifecycleManager(client platform.Client, cache ListCache, ttl time.Duration, logger *zap.Logger) *DefaultLifecycleManager {
	return &DefaultLifecycleManager{
		Platform: client,
		Cache:    cache,
		CacheTTL: ttl,
		Logger:   logger,
		bookings: make(map[string]models.Booking),
		cached:   make(map[string]struct{}),
	}
}

func (m *DefaultLifecycleManager) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.L()
}

// List fetches all bookings visible under the scope, preferring the cache.
// A malformed cache entry is treated as a miss, never a crash.
func (m *DefaultLifecycleManager) List(ctx context.Context, scope platform.ListScope) ([]models.Booking, error) {
	if cached, ok := m.loadCached(ctx, scope); ok {
		m.remember(scope, cached)
		return cached, nil
	}

	bookings, err := m.Platform.ListBookings(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	m.remember(scope, bookings)
	m.storeCached(ctx, scope, bookings)
	return bookings, nil
}

// Advance moves a booking one step along Pending -> OnTheWay -> Completed.
// Illegal requests are rejected locally before any network call.
func (m *DefaultLifecycleManager) Advance(ctx context.Context, id string, next models.BookingStatus) (*models.Booking, error) {
	current, err := m.local(id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", ErrInvalidTransition, id)
	}
	legal := (next == models.StatusOnTheWay && current.Status == models.StatusPending) ||
		(next == models.StatusCompleted && current.Status == models.StatusOnTheWay)
	if !legal {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := m.Platform.UpdateBooking(ctx, id, platform.BookingPatch{Status: &next})
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	m.reconcile(ctx, *updated)
	m.logger().Info("booking advanced",
		zap.String("bookingID", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)))
	return updated, nil
}

// Cancel flags a booking as cancelled without altering its status. Legal only
// before completion.
func (m *DefaultLifecycleManager) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	current, err := m.local(id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled {
		return nil, fmt.Errorf("%w: booking %s is already cancelled", ErrInvalidTransition, id)
	}
	if current.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: completed bookings cannot be cancelled", ErrInvalidTransition)
	}

	cancelled := true
	updated, err := m.Platform.UpdateBooking(ctx, id, platform.BookingPatch{IsCancelled: &cancelled})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	m.reconcile(ctx, *updated)
	m.logger().Info("booking cancelled", zap.String("bookingID", id))
	return updated, nil
}

// AttachReview stores a customer review on a completed, non-cancelled booking.
func (m *DefaultLifecycleManager) AttachReview(ctx context.Context, id, review string) (*models.Booking, error) {
	current, err := m.local(id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled {
		return nil, fmt.Errorf("%w: cancelled bookings cannot be reviewed", ErrInvalidTransition)
	}
	if current.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed bookings can be reviewed", ErrInvalidTransition)
	}

	updated, err := m.Platform.UpdateBooking(ctx, id, platform.BookingPatch{Review: &review})
	if err != nil {
		return nil, fmt.Errorf("failed to attach review: %w", err)
	}
	m.reconcile(ctx, *updated)
	return updated, nil
}

func (m *DefaultLifecycleManager) local(id string) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return b, nil
}

// remember replaces the manager's local copies for the fetched scope.
func (m *DefaultLifecycleManager) remember(_ platform.ListScope, bookings []models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
}

// reconcile replaces only the targeted booking with the server's copy and
// drops stale cached lists. All other bookings are untouched.
func (m *DefaultLifecycleManager) reconcile(ctx context.Context, updated models.Booking) {
	m.mu.Lock()
	m.bookings[updated.ID] = updated
	keys := make([]string, 0, len(m.cached))
	for key := range m.cached {
		keys = append(keys, key)
		delete(m.cached, key)
	}
	m.mu.Unlock()

	if m.Cache != nil && len(keys) > 0 {
		if err := m.Cache.Del(ctx, keys...); err != nil {
			m.logger().Warn("failed to invalidate booking-list cache", zap.Error(err))
		}
	}
}

// loadCached reads the scope's cached list. A malformed entry is treated as a
// miss and dropped, never a crash.
func (m *DefaultLifecycleManager) loadCached(ctx context.Context, scope platform.ListScope) ([]models.Booking, bool) {
	if m.Cache == nil {
		return nil, false
	}
	data, ok, err := m.Cache.Get(ctx, scope.Key())
	if err != nil || !ok {
		return nil, false
	}
	var bookings []models.Booking
	if err := json.Unmarshal([]byte(data), &bookings); err != nil {
		m.logger().Warn("malformed cached booking list, refetching",
			zap.String("scope", scope.Key()), zap.Error(err))
		m.Cache.Del(ctx, scope.Key())
		return nil, false
	}
	return bookings, true
}

func (m *DefaultLifecycleManager) storeCached(ctx context.Context, scope platform.ListScope, bookings []models.Booking) {
	if m.Cache == nil {
		return
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		return
	}
	ttl := m.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := m.Cache.Set(ctx, scope.Key(), string(data), ttl); err != nil {
		m.logger().Warn("failed to cache booking list", zap.Error(err))
		return
	}
	m.mu.Lock()
	m.cached[scope.Key()] = struct{}{}
	m.mu.Unlock()
}
