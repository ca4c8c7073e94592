package creatorscout

import "github.com/kailas-cloud/creatorscout/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound            = domain.ErrNotFound
	ErrInvalidPlatform     = domain.ErrInvalidPlatform
	ErrInvalidUsername     = domain.ErrInvalidUsername
	ErrInvalidRequest      = domain.ErrInvalidRequest
	ErrConfiguration       = domain.ErrConfiguration
	ErrProviderUnavailable = domain.ErrProviderUnavailable
	ErrProviderError       = domain.ErrProviderError
	ErrRateLimited         = domain.ErrRateLimited
	ErrCrawlBudgetExceeded = domain.ErrCrawlBudgetExceeded
)
