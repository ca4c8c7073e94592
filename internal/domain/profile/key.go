package profile

import (
	"strings"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
)

// Key identifies a cached creator.
type Key struct {
	Username string
	Platform platform.Platform
}

// NewKey builds a Key with a normalized username.
func NewKey(username string, p platform.Platform) Key {
	return Key{Username: NormalizeUsername(username), Platform: p}
}

// String renders the key as platform/username.
func (k Key) String() string { return string(k.Platform) + "/" + k.Username }

// ID returns the case-insensitive identity used for storage keys.
func (k Key) ID() string {
	return string(k.Platform) + ":" + strings.ToLower(k.Username)
}

// NormalizeUsername trims whitespace and strips one leading @.
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSpace(s)
}
