package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	// JSONSetMulti writes all items in one round-trip and returns one
	// error slot per item.
	JSONSetMulti(ctx context.Context, items []JSONSetItem) []error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	// JSONGetMulti reads keys in one round-trip. Missing keys carry
	// ErrKeyNotFound in their error slot.
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, []error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// IncrByTTL increments a counter, setting ttl only when the counter has
	// no expiry yet, and returns the new value.
	IncrByTTL(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
}
