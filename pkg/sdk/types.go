package creatorscout

import "time"

// Platform selects the social network to search.
type Platform string

// Platform constants.
const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformCombined  Platform = "combined" // search only
)

// Creator is a crawled creator profile.
type Creator struct {
	Platform       Platform
	Username       string
	FullName       string
	Bio            string
	AvatarURL      string
	Category       string
	Region         string
	Links          []string
	Followers      int64
	Following      int64
	TotalLikes     int64
	ContentCount   int64
	Verified       bool
	EngagementRate *float64 // percent, nil when it cannot be computed
	Posts          []Post
	FetchedAt      time.Time
}

// Post is one recent post or video of a creator.
type Post struct {
	ID       string
	Caption  string
	TakenAt  time.Time
	Likes    *int64 // nil when hidden
	Comments int64
	Shares   *int64
	Views    int64
	IsVideo  bool
}

// SearchRequest describes a creator search. At least one of Topic,
// Location and Keywords is required.
type SearchRequest struct {
	Platform     Platform
	Topic        string
	Location     string
	Keywords     []string
	Limit        int   // 0 uses the default
	MinFollowers int64 // 0 = no lower bound
	MaxFollowers int64 // 0 = no upper bound

	// UserID and SessionID record the results in the session ledger.
	// A UserID without a SessionID starts a new session.
	UserID    string
	SessionID string
}

// SearchResult holds the ranked creators of a search.
type SearchResult struct {
	SessionID string // empty when nothing was recorded
	Queries   int
	Creators  []Creator
}

// LookupRequest asks for creators by username on one platform.
type LookupRequest struct {
	Platform  Platform
	Usernames []string
	UserID    string
	SessionID string
}
