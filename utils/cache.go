package utils

import (
	"context"
	"log"
	"time"

	"asap/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CheckoutCacheClient holds checkout results and the operator booking-list cache.
	CheckoutCacheClient *redis.Client
	// LedgerCacheClient is the dedicated client for the payment-proof ledger.
	LedgerCacheClient *redis.Client
)

// InitCheckoutCache initializes the Redis client used for checkout results and booking-list caching.
func InitCheckoutCache() {
	CheckoutCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CheckoutCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Checkout Cache): %v", err)
	}
}

// GetCheckoutCacheClient returns the checkout cache client.
func GetCheckoutCacheClient() *redis.Client {
	if CheckoutCacheClient == nil {
		InitCheckoutCache()
	}
	return CheckoutCacheClient
}

// InitLedgerCache initializes the Redis client for the payment-proof ledger.
func InitLedgerCache() {
	LedgerCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLedgerDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LedgerCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Proof Ledger): %v", err)
	}
}

// GetLedgerCacheClient returns the Redis client for the payment-proof ledger.
func GetLedgerCacheClient() *redis.Client {
	if LedgerCacheClient == nil {
		InitLedgerCache()
	}
	return LedgerCacheClient
}
