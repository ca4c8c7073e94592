package platform

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/creatorscout/internal/domain"
)

// Platform identifies a social network. It is used as a dimension key for
// cache keys, query templates and metrics labels.
type Platform string

// Supported platforms.
const (
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
	YouTube   Platform = "youtube"
	X         Platform = "x"
	LinkedIn  Platform = "linkedin"
	Facebook  Platform = "facebook"
	Combined  Platform = "combined"
)

var domains = map[Platform]string{
	Instagram: "instagram.com",
	TikTok:    "tiktok.com",
	YouTube:   "youtube.com",
	X:         "x.com",
	LinkedIn:  "linkedin.com",
	Facebook:  "facebook.com",
	Combined:  "",
}

var aliases = map[string]Platform{
	"twitter":            X,
	"combined_platforms": Combined,
	"ig":                 Instagram,
	"tt":                 TikTok,
}

// Parse converts a case-insensitive name into a Platform.
func Parse(s string) (Platform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if p, ok := aliases[name]; ok {
		return p, nil
	}
	p := Platform(name)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlatform, s)
	}
	return p, nil
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	_, ok := domains[p]
	return ok
}

// Domain returns the canonical domain, empty for Combined.
func (p Platform) Domain() string { return domains[p] }

func (p Platform) String() string { return string(p) }

// Crawlable reports whether creator profiles can be fetched for p.
func (p Platform) Crawlable() bool { return p == Instagram || p == TikTok }

// RequiresContent reports whether a cached profile is only usable together
// with its content list.
func (p Platform) RequiresContent() bool { return p == TikTok }

// ReportsShares reports whether share counts take part in engagement.
func (p Platform) ReportsShares() bool { return p == TikTok }

// Searchable returns the platforms that carry a web search path filter.
func Searchable() []Platform {
	return []Platform{Instagram, TikTok, YouTube, X, LinkedIn, Facebook}
}
