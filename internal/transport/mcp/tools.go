package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
)

// SearchInput is the input of search_influencers.
type SearchInput struct {
	Platform     string   `json:"platform" jsonschema:"instagram, tiktok or combined"`
	Topic        string   `json:"topic" jsonschema:"niche or subject the creators cover"`
	Location     string   `json:"location,omitempty" jsonschema:"city, region or country"`
	Keywords     []string `json:"keywords,omitempty" jsonschema:"3 to 5 search keywords"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of creators (default 10)"`
	MinFollowers int64    `json:"min_followers,omitempty" jsonschema:"lower follower bound"`
	MaxFollowers int64    `json:"max_followers,omitempty" jsonschema:"upper follower bound"`
	UserID       string   `json:"user_id,omitempty" jsonschema:"user the results are recorded for"`
	SessionID    string   `json:"session_id,omitempty" jsonschema:"conversation session id"`
}

// LookupInput is the input of lookup_creators.
type LookupInput struct {
	Platform  string   `json:"platform" jsonschema:"instagram or tiktok"`
	Usernames []string `json:"usernames" jsonschema:"creator usernames, with or without @"`
	UserID    string   `json:"user_id,omitempty" jsonschema:"user the results are recorded for"`
	SessionID string   `json:"session_id,omitempty" jsonschema:"conversation session id"`
}

// SessionInput is the input of get_session_influencers.
type SessionInput struct {
	UserID    string   `json:"user_id" jsonschema:"user id"`
	SessionID string   `json:"session_id" jsonschema:"conversation session id"`
	Usernames []string `json:"usernames,omitempty" jsonschema:"only these creators; all when empty"`
}

// ExtractInput is the input of extract_usernames.
type ExtractInput struct {
	Text string `json:"text" jsonschema:"free text mentioning @handles"`
}

// CreatorGroup holds the creators of one platform.
type CreatorGroup struct {
	Platform    string              `json:"platform"`
	Influencers []profile.AgentView `json:"data"`
}

// CreatorsOutput is the output of the creator tools.
type CreatorsOutput struct {
	SessionID string         `json:"session_id,omitempty"`
	Count     int            `json:"count"`
	Groups    []CreatorGroup `json:"results"`
}

// ExtractOutput is the output of extract_usernames.
type ExtractOutput struct {
	Usernames []string `json:"usernames"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_influencers",
		Description: "Find Instagram and TikTok creators for a topic and location. " +
			"Results are recorded in the session so they can be referenced later.",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_creators",
		Description: "Fetch profiles and recent posts of specific creators by username.",
	}, s.handleLookup)
	if s.ports.Sessions != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_session_influencers",
			Description: "List the creators already shown in a conversation session.",
		}, s.handleSession)
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_usernames",
		Description: "Extract unique @handles from free text.",
	}, s.handleExtract)
}

func (s *Server) handleSearch(
	ctx context.Context, _ *mcp.CallToolRequest, in SearchInput,
) (*mcp.CallToolResult, CreatorsOutput, error) {
	p, err := platform.Parse(in.Platform)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	ref, err := session.FromRequest(in.UserID, in.SessionID)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	ctx = s.context(ctx, ref)

	res, err := s.ports.Discovery.Search(ctx, discovery.Request{
		Platform:     p,
		Topic:        in.Topic,
		Location:     in.Location,
		Keywords:     in.Keywords,
		Limit:        in.Limit,
		MinFollowers: in.MinFollowers,
		MaxFollowers: in.MaxFollowers,
		Session:      ref,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("search_influencers failed", zap.Error(err))
		return nil, CreatorsOutput{}, err
	}
	return nil, groupCreators(ref, res.Profiles), nil
}

func (s *Server) handleLookup(
	ctx context.Context, _ *mcp.CallToolRequest, in LookupInput,
) (*mcp.CallToolResult, CreatorsOutput, error) {
	p, err := platform.Parse(in.Platform)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	ref, err := session.FromRequest(in.UserID, in.SessionID)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	ctx = s.context(ctx, ref)

	profiles, err := s.ports.Discovery.Lookup(ctx, discovery.LookupRequest{
		Platform:  p,
		Usernames: in.Usernames,
		Session:   ref,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("lookup_creators failed", zap.Error(err))
		return nil, CreatorsOutput{}, err
	}
	return nil, groupCreators(ref, profiles), nil
}

func (s *Server) handleSession(
	ctx context.Context, _ *mcp.CallToolRequest, in SessionInput,
) (*mcp.CallToolResult, CreatorsOutput, error) {
	ref, err := session.New(in.UserID, in.SessionID)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	ctx = s.context(ctx, ref)

	profiles, err := s.ports.Sessions.Lookup(ctx, ref, in.Usernames)
	if err != nil {
		return nil, CreatorsOutput{}, err
	}
	return nil, groupCreators(ref, profiles), nil
}

func (s *Server) handleExtract(
	_ context.Context, _ *mcp.CallToolRequest, in ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	names := discovery.ExtractUsernames(in.Text)
	if names == nil {
		names = []string{}
	}
	return nil, ExtractOutput{Usernames: names}, nil
}

func (s *Server) context(ctx context.Context, ref session.Ref) context.Context {
	ctx = logger.ContextWithLogger(ctx, s.ports.Logger.With(zap.String("transport", "mcp")))
	return logger.WithSession(ctx, ref.UserID, ref.SessionID)
}

// groupCreators splits profiles by platform, Instagram first, keeping order.
func groupCreators(ref session.Ref, profiles []profile.Profile) CreatorsOutput {
	out := CreatorsOutput{SessionID: ref.SessionID, Count: len(profiles), Groups: []CreatorGroup{}}
	for _, p := range []platform.Platform{platform.Instagram, platform.TikTok} {
		views := []profile.AgentView{}
		for _, pr := range profiles {
			if pr.Platform() == p {
				views = append(views, pr.AgentView())
			}
		}
		if len(views) > 0 {
			out.Groups = append(out.Groups, CreatorGroup{Platform: string(p), Influencers: views})
		}
	}
	return out
}
