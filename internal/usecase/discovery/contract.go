package discovery

import (
	"context"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
)

// SearchProvider runs web search queries.
type SearchProvider interface {
	Search(ctx context.Context, q search.Query) ([]search.Hit, error)
	// BulkSearch runs every query and returns hits keyed by query id.
	// Failed queries are absent from the map; an error means no query ran.
	BulkSearch(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error)
}

// TikTokSearcher runs TikTok native keyword searches. Returned profiles
// carry account data but no content.
type TikTokSearcher interface {
	SearchAccounts(ctx context.Context, phrase, period string) ([]profile.Profile, error)
}

// Syncer resolves creators through the creator cache.
type Syncer interface {
	Sync(ctx context.Context, cands []creatorsync.Candidate, opts creatorsync.Options) creatorsync.Report
}

// Ledger records and resolves the creators shown in a session.
type Ledger interface {
	Append(ctx context.Context, ref session.Ref, entries []profile.Profile) error
	Resolve(ctx context.Context, ref session.Ref, p platform.Platform, usernames []string) ([]profile.Profile, error)
}

// KeywordSuggester proposes search keywords for a topic.
type KeywordSuggester interface {
	SuggestKeywords(ctx context.Context, topic, location string, p platform.Platform) ([]string, error)
}
