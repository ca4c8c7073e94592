package batch

import "github.com/kailas-cloud/creatorscout/internal/domain/profile"

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of saving one profile in a batch write.
type Result struct {
	key    profile.Key
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(key profile.Key) Result { return Result{key: key, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(key profile.Key, err error) Result {
	return Result{key: key, status: StatusError, err: err}
}

// Key returns the item key.
func (r Result) Key() profile.Key { return r.key }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the profile was saved.
func (r Result) OK() bool { return r.status == StatusOK }

// Partition splits results into saved and failed items, keeping order.
func Partition(results []Result) (saved, failed []Result) {
	for _, r := range results {
		if r.OK() {
			saved = append(saved, r)
		} else {
			failed = append(failed, r)
		}
	}
	return saved, failed
}
