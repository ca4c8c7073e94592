package creatorscout

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
)

// Search finds creators for a topic. Without follower bounds creators are
// ranked by engagement rate.
func (c *Client) Search(ctx context.Context, req SearchRequest) (res SearchResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, "platform", req.Platform, "topic", req.Topic)
		c.obs.returned("search", len(res.Creators))
	}()

	p, err := platform.Parse(string(req.Platform))
	if err != nil {
		return SearchResult{}, err
	}
	ref, err := session.FromRequest(req.UserID, req.SessionID)
	if err != nil {
		return SearchResult{}, err
	}

	out, err := c.discovery.Search(ctx, discovery.Request{
		Platform:     p,
		Topic:        req.Topic,
		Location:     req.Location,
		Keywords:     req.Keywords,
		Limit:        req.Limit,
		MinFollowers: req.MinFollowers,
		MaxFollowers: req.MaxFollowers,
		Session:      ref,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return SearchResult{
		SessionID: ref.SessionID,
		Queries:   out.Queries,
		Creators:  creatorsFromDomain(out.Profiles),
	}, nil
}

// Lookup returns creators by username, crawling the ones not cached.
// Unresolvable usernames are left out.
func (c *Client) Lookup(ctx context.Context, req LookupRequest) (creators []Creator, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("lookup", start, err, "platform", req.Platform, "requested", len(req.Usernames))
		c.obs.returned("lookup", len(creators))
	}()

	p, err := platform.Parse(string(req.Platform))
	if err != nil {
		return nil, err
	}
	ref, err := session.FromRequest(req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	profiles, err := c.discovery.Lookup(ctx, discovery.LookupRequest{
		Platform:  p,
		Usernames: req.Usernames,
		Session:   ref,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	return creatorsFromDomain(profiles), nil
}

// SessionInfluencers returns the creators recorded in a session, all of
// them when no usernames are given. Requires WithMongoLedger.
func (c *Client) SessionInfluencers(
	ctx context.Context, userID, sessionID string, usernames ...string,
) (creators []Creator, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("session_influencers", start, err, "user_id", userID, "session_id", sessionID)
		c.obs.returned("session_influencers", len(creators))
	}()

	if c.sessions == nil {
		return nil, fmt.Errorf("%w: session ledger not configured (use WithMongoLedger)", ErrConfiguration)
	}
	ref, err := session.New(userID, sessionID)
	if err != nil {
		return nil, err
	}
	profiles, err := c.sessions.Lookup(ctx, ref, usernames)
	if err != nil {
		return nil, fmt.Errorf("session influencers: %w", err)
	}
	return creatorsFromDomain(profiles), nil
}

// ExtractUsernames returns the @handles mentioned in text, deduplicated
// case-insensitively. The first spelling of each handle is kept.
func ExtractUsernames(text string) []string {
	return discovery.ExtractUsernames(text)
}
