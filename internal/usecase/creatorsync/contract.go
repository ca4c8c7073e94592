package creatorsync

import (
	"context"
	"time"

	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// CreatorStore is the shared store of crawled profiles keyed by (username, platform).
type CreatorStore interface {
	// GetMany looks up keys with at most workers concurrent calls. Entries
	// older than maxAge come back as misses. A non-nil error means the
	// whole batch failed.
	GetMany(ctx context.Context, keys []profile.Key, maxAge time.Duration, workers int) ([]lookup.Result, error)
	// SaveMany upserts profiles with at most workers concurrent calls.
	SaveMany(ctx context.Context, profiles []profile.Profile, workers int) ([]dombatch.Result, error)
	Save(ctx context.Context, p profile.Profile) error
}

// Fetcher crawls creator data from the platform data provider.
type Fetcher interface {
	FetchProfile(ctx context.Context, p platform.Platform, username string) (profile.Profile, error)
	FetchContent(ctx context.Context, p platform.Platform, username string, depth int) ([]profile.ContentItem, error)
}
