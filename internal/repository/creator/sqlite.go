package creator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/creatorscout/internal/domain"
	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/repository/record"
	"github.com/kailas-cloud/creatorscout/internal/usecase/fanout"
)

const schema = `
CREATE TABLE IF NOT EXISTS creators (
	id         TEXT PRIMARY KEY,
	platform   TEXT NOT NULL,
	username   TEXT NOT NULL,
	data       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS creators_fetched_at ON creators(fetched_at);
`

const upsertCreator = `
INSERT INTO creators (id, platform, username, data, fetched_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	platform = excluded.platform,
	username = excluded.username,
	data = excluded.data,
	fetched_at = excluded.fetched_at
`

// SQLiteRepo implements usecase/creatorsync.CreatorStore on an embedded
// SQLite file. Used for local runs without Redis.
type SQLiteRepo struct {
	db          *sql.DB
	path        string
	callTimeout time.Duration
	now         func() time.Time
}

// OpenSQLite opens (creating when absent) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteRepo{db: conn, path: path, now: time.Now}, nil
}

// WithCallTimeout bounds every chunk query.
func (r *SQLiteRepo) WithCallTimeout(d time.Duration) *SQLiteRepo {
	r.callTimeout = d
	return r
}

// Path returns the database file path.
func (r *SQLiteRepo) Path() string { return r.path }

// Ping checks the database connection.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Get returns a stored profile regardless of age.
func (r *SQLiteRepo) Get(ctx context.Context, k profile.Key) (profile.Profile, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM creators WHERE id = ?`, k.ID()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, fmt.Errorf("creator %s: %w", k, domain.ErrNotFound)
		}
		return profile.Profile{}, fmt.Errorf("selecting creator %s: %w", k, err)
	}
	return decode([]byte(data))
}

// Save upserts one profile.
func (r *SQLiteRepo) Save(ctx context.Context, p profile.Profile) error {
	return r.upsert(ctx, r.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepo) upsert(ctx context.Context, ex execer, p profile.Profile) error {
	data, err := json.Marshal(record.FromDomain(p))
	if err != nil {
		return fmt.Errorf("marshal creator: %w", err)
	}
	k := p.Key()
	if _, err := ex.ExecContext(ctx, upsertCreator,
		k.ID(), string(k.Platform), k.Username, string(data), p.FetchedAt().Unix()); err != nil {
		return fmt.Errorf("saving creator %s: %w", k, err)
	}
	return nil
}

// GetMany reads keys in at most workers chunks with one IN query each.
func (r *SQLiteRepo) GetMany(
	ctx context.Context, keys []profile.Key, maxAge time.Duration, workers int,
) ([]lookup.Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	now := r.now()
	chunks := chunk(keys, workers)
	outcomes := fanout.SortByIndex(fanout.Run(ctx, chunks, workers,
		func(ctx context.Context, c []profile.Key) ([]lookup.Result, error) {
			return r.getChunk(ctx, c, maxAge, now)
		}, r.opts("creator_get")...))

	results := make([]lookup.Result, 0, len(keys))
	for _, oc := range outcomes {
		if oc.Err != nil {
			for _, k := range chunks[oc.Index] {
				results = append(results, lookup.NewError(k, oc.Err))
			}
			continue
		}
		results = append(results, oc.Value...)
	}
	if err := allFailed(results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *SQLiteRepo) getChunk(
	ctx context.Context, keys []profile.Key, maxAge time.Duration, now time.Time,
) ([]lookup.Result, error) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k.ID()
	}
	query := `SELECT id, data FROM creators WHERE id IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting creators: %w", err)
	}
	defer rows.Close()

	found := make(map[string][]byte, len(keys))
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning creator: %w", err)
		}
		found[id] = []byte(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating creators: %w", err)
	}

	out := make([]lookup.Result, len(keys))
	for i, k := range keys {
		raw, ok := found[k.ID()]
		if !ok {
			out[i] = lookup.NewMiss(k)
			continue
		}
		out[i] = classify(k, raw, maxAge, now)
	}
	return out, nil
}

// SaveMany upserts profiles in at most workers chunks, one transaction per
// chunk. A failed row is reported without aborting its chunk.
func (r *SQLiteRepo) SaveMany(ctx context.Context, profiles []profile.Profile, workers int) ([]dombatch.Result, error) {
	if len(profiles) == 0 {
		return nil, nil
	}
	chunks := chunk(profiles, workers)
	outcomes := fanout.SortByIndex(fanout.Run(ctx, chunks, workers,
		func(ctx context.Context, c []profile.Profile) ([]dombatch.Result, error) {
			return r.saveChunk(ctx, c)
		}, r.opts("creator_save")...))

	results := make([]dombatch.Result, 0, len(profiles))
	for _, oc := range outcomes {
		if oc.Err != nil {
			for _, p := range chunks[oc.Index] {
				results = append(results, dombatch.NewError(p.Key(), oc.Err))
			}
			continue
		}
		results = append(results, oc.Value...)
	}
	if err := allSaveFailed(results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *SQLiteRepo) saveChunk(ctx context.Context, ps []profile.Profile) ([]dombatch.Result, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	out := make([]dombatch.Result, len(ps))
	for i, p := range ps {
		if err := r.upsert(ctx, tx, p); err != nil {
			out[i] = dombatch.NewError(p.Key(), err)
			continue
		}
		out[i] = dombatch.NewOK(p.Key())
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing creators: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepo) opts(op string) []fanout.Option {
	o := []fanout.Option{fanout.WithOp(op)}
	if r.callTimeout > 0 {
		o = append(o, fanout.WithTimeout(r.callTimeout))
	}
	return o
}
