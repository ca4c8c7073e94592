package discovery

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

var mention = regexp.MustCompile(`@([A-Za-z0-9_.]{2,})`)

// ExtractUsernames returns the @handles mentioned in text, deduplicated
// case-insensitively. The first spelling of each handle is kept.
func ExtractUsernames(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range mention.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(m[1], ".")
		if len(name) < 2 {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func dedupeNames(names []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = profile.NormalizeUsername(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
