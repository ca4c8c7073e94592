package domain

import "time"

// KeyPrefix namespaces every key this service writes to shared key-value stores.
const KeyPrefix = "creatorscout:"

// CacheConfig holds creator cache freshness settings shared by the sync layer and stores.
type CacheConfig struct {
	MaxAge  time.Duration
	Workers int
}

// DefaultCacheConfig returns a 7-day freshness window and 5 parallel workers.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:  7 * 24 * time.Hour,
		Workers: 5,
	}
}
