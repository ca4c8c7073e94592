// Package websearch holds what the web search provider clients share:
// parallel bulk execution and request metrics.
package websearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/usecase/fanout"
)

// DefaultWorkers bounds parallel queries per bulk call.
const DefaultWorkers = 5

// Bulk runs every query through fn with at most workers in flight. Failed
// queries are logged and left out of the map; an error is returned only
// when no query succeeded.
func Bulk(
	ctx context.Context, provider string, workers int, qs []search.Query,
	fn func(ctx context.Context, q search.Query) ([]search.Hit, error),
) (map[string][]search.Hit, error) {
	if len(qs) == 0 {
		return map[string][]search.Hit{}, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := logger.FromContext(ctx)

	outcomes := fanout.Run(ctx, qs, workers, fn, fanout.WithOp(provider+"_search"))
	out := make(map[string][]search.Hit, len(qs))
	var errs []error
	for _, oc := range outcomes {
		q := qs[oc.Index]
		if oc.Err != nil {
			log.Warn("search query failed",
				zap.String("provider", provider), zap.String("query_id", q.ID), zap.Error(oc.Err))
			errs = append(errs, fmt.Errorf("%s: %w", q.ID, oc.Err))
			continue
		}
		out[q.ID] = oc.Value
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s bulk search: all %d queries failed: %w", provider, len(qs), errors.Join(errs...))
	}
	log.Info("bulk search done",
		zap.String("provider", provider), zap.Int("queries", len(qs)), zap.Int("failed", len(errs)))
	return out, nil
}

// Observe records one provider request.
func Observe(provider string, start time.Time, hits int, err error) {
	metrics.SearchRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(provider, "error").Inc()
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(provider, "ok").Inc()
	metrics.SearchHitsTotal.WithLabelValues(provider).Add(float64(hits))
}
