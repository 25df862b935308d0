package booking

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ProofLedger records which gateway payment IDs already produced a booking.
// The booking-creation collaborator is not guaranteed idempotent, so the
// saga consults the ledger before every create call.
type ProofLedger interface {
	// FirstUse atomically marks the payment ID as consumed and reports
	// whether this caller was the first to do so.
	FirstUse(ctx context.Context, gatewayPaymentID string) (bool, error)
}

// RedisProofLedger backs the ledger with SETNX so concurrent processes agree
// on the first consumer.
type RedisProofLedger struct {
	Client *redis.Client
	TTL    time.Duration
}

func (l *RedisProofLedger) FirstUse(ctx context.Context, gatewayPaymentID string) (bool, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return l.Client.SetNX(ctx, "proof:used:"+gatewayPaymentID, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// MemoryProofLedger is an in-process ledger for tests and single-node setups.
type MemoryProofLedger struct {
	mu   sync.Mutex
	used map[string]bool
}

func NewMemoryProofLedger() *MemoryProofLedger {
	return &MemoryProofLedger{used: make(map[string]bool)}
}

func (l *MemoryProofLedger) FirstUse(_ context.Context, gatewayPaymentID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used[gatewayPaymentID] {
		return false, nil
	}
	l.used[gatewayPaymentID] = true
	return true, nil
}
