// Package rank scores search hits by how many query variants surfaced them.
package rank

import (
	"slices"

	"github.com/kailas-cloud/creatorscout/internal/domain/search"
)

// Rank deduplicates hits by identity key and scores each by its number of
// occurrences. The first occurrence is kept as the representative; ties
// keep first-seen order. Hits without URL and ID are dropped.
func Rank(hits []search.Hit) []search.Ranked {
	if len(hits) == 0 {
		return []search.Ranked{}
	}

	index := make(map[string]int, len(hits))
	ranked := make([]search.Ranked, 0, len(hits))
	for _, h := range hits {
		key := h.IdentityKey()
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			ranked[i].Score++
			continue
		}
		index[key] = len(ranked)
		ranked = append(ranked, search.Ranked{Hit: h, Score: 1})
	}

	slices.SortStableFunc(ranked, func(a, b search.Ranked) int { return b.Score - a.Score })
	return ranked
}

// Top returns at most n ranked results. n <= 0 means no limit.
func Top(ranked []search.Ranked, n int) []search.Ranked {
	if n <= 0 || len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}
