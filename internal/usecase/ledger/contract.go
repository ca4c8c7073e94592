package ledger

import (
	"context"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
)

// Store persists one profile list per session document.
type Store interface {
	// Get returns the stored entries, domain.ErrNotFound when the document is absent.
	Get(ctx context.Context, docID string) ([]profile.Profile, error)
	// Upsert replaces the document's entries, creating it when absent.
	Upsert(ctx context.Context, docID string, entries []profile.Profile) error
}

// Syncer resolves creators the ledger does not hold.
type Syncer interface {
	Sync(ctx context.Context, cands []creatorsync.Candidate, opts creatorsync.Options) creatorsync.Report
}
