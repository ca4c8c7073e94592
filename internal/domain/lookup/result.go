package lookup

import "github.com/kailas-cloud/creatorscout/internal/domain/profile"

// Outcome is the result kind of a single cache lookup.
type Outcome string

// Lookup outcomes.
const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeError Outcome = "error"
)

// Result is the outcome of looking up one key in the creator store.
// Exactly one of hit, miss or error.
type Result struct {
	key     profile.Key
	outcome Outcome
	profile profile.Profile
	err     error
}

// NewHit creates a result carrying a stored profile.
func NewHit(key profile.Key, p profile.Profile) Result {
	return Result{key: key, outcome: OutcomeHit, profile: p}
}

// NewMiss creates a result for an absent or stale entry.
func NewMiss(key profile.Key) Result { return Result{key: key, outcome: OutcomeMiss} }

// NewError creates a result for a failed lookup.
func NewError(key profile.Key, err error) Result {
	return Result{key: key, outcome: OutcomeError, err: err}
}

// Key returns the looked-up key.
func (r Result) Key() profile.Key { return r.key }

// Outcome returns the result kind.
func (r Result) Outcome() Outcome { return r.outcome }

// Profile returns the stored profile and whether the lookup was a hit.
func (r Result) Profile() (profile.Profile, bool) {
	return r.profile, r.outcome == OutcomeHit
}

// Err returns the lookup error, if any.
func (r Result) Err() error { return r.err }
