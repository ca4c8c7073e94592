package health

import "context"

// Pinger checks availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider reports whether an upstream provider currently accepts calls.
type Provider interface {
	Name() string
	Available() bool
}
