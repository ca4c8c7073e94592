package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPlatform signals an unknown or unsupported platform.
	ErrInvalidPlatform = errors.New("invalid platform")
	// ErrInvalidUsername signals an empty or malformed username.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidRequest signals a request that fails validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrConfiguration signals missing credentials or settings for a collaborator.
	ErrConfiguration = errors.New("configuration error")
	// ErrProviderUnavailable signals a provider blocked after repeated failures.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderError signals a failed call to an external provider.
	ErrProviderError = errors.New("provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrCrawlBudgetExceeded signals an exhausted crawl unit budget.
	ErrCrawlBudgetExceeded = errors.New("crawl budget exceeded")
)

// ProviderError carries the upstream HTTP status of a failed provider call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d: %s", ErrProviderError.Error(), e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return ErrProviderError }

// Temporary reports whether retrying the call may succeed (429 and 5xx).
func (e *ProviderError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
