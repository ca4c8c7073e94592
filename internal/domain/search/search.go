package search

import (
	"context"
	"fmt"
)

// Query is one formulated search string with its provenance.
type Query struct {
	ID   string // query_<n>, unique within one formulation
	Text string
	Rule string // formulation rule that produced the text
}

// NewQuery builds a query numbered by its position in a formulation.
func NewQuery(n int, text, rule string) Query {
	return Query{ID: fmt.Sprintf("query_%d", n), Text: text, Rule: rule}
}

// Hit is a raw search result as returned by a provider.
type Hit struct {
	URL     string
	ID      string
	Title   string
	QueryID string
}

// IdentityKey returns the URL, falling back to the provider id.
// Hits with neither cannot be ranked.
func (h Hit) IdentityKey() string {
	if h.URL != "" {
		return h.URL
	}
	return h.ID
}

// Ranked is a deduplicated hit with its frequency score.
type Ranked struct {
	Hit
	Score int // number of raw hits sharing the identity key, >= 1
}

type freshKey struct{}

// WithFresh marks ctx so that result caches skip their lookup and ask the
// provider again. Fresh results may still be stored.
func WithFresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

// IsFresh reports whether ctx was marked by WithFresh.
func IsFresh(ctx context.Context) bool {
	v, _ := ctx.Value(freshKey{}).(bool)
	return v
}
