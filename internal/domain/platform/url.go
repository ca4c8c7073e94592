package platform

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	instagramName = regexp.MustCompile(`^[A-Za-z0-9._]{1,30}$`)
	tiktokName    = regexp.MustCompile(`^[A-Za-z0-9._]{2,24}$`)
	xName         = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
	genericName   = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)
)

// ParseProfileURL extracts the username from a profile page URL of p.
// It returns false for content pages, help pages, other hosts and
// malformed URLs.
func ParseProfileURL(raw string, p Platform) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if !hostMatches(u.Hostname(), p.Domain()) {
		return "", false
	}

	segs := segments(u.Path)

	switch p {
	case Instagram:
		return singleSegment(p, segs, instagramName, "")
	case TikTok:
		return singleSegment(p, segs, tiktokName, "@")
	case X:
		return singleSegment(p, segs, xName, "")
	case YouTube:
		return youtubeName(segs)
	case LinkedIn:
		if len(segs) >= 2 && strings.EqualFold(segs[0], "in") && genericName.MatchString(segs[1]) {
			return segs[1], true
		}
		return "", false
	case Facebook:
		return facebookName(u, segs)
	default:
		return "", false
	}
}

func hostMatches(host, dom string) bool {
	if dom == "" {
		return false
	}
	host = strings.ToLower(host)
	for _, prefix := range []string{"www.", "m.", "mobile."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host == dom
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func singleSegment(p Platform, segs []string, pattern *regexp.Regexp, prefix string) (string, bool) {
	if len(segs) != 1 {
		return "", false
	}
	seg := segs[0]
	if prefix != "" {
		if !strings.HasPrefix(seg, prefix) {
			return "", false
		}
		seg = strings.TrimPrefix(seg, prefix)
	}
	if p.reserved(strings.ToLower(seg)) || !pattern.MatchString(seg) {
		return "", false
	}
	return seg, true
}

func youtubeName(segs []string) (string, bool) {
	switch {
	case len(segs) == 1 && strings.HasPrefix(segs[0], "@"):
		name := strings.TrimPrefix(segs[0], "@")
		return name, genericName.MatchString(name)
	case len(segs) >= 2:
		switch strings.ToLower(segs[0]) {
		case "channel", "user", "c":
			return segs[1], genericName.MatchString(segs[1])
		}
	}
	return "", false
}

func facebookName(u *url.URL, segs []string) (string, bool) {
	if len(segs) == 1 && strings.EqualFold(segs[0], "profile.php") {
		id := u.Query().Get("id")
		return id, id != ""
	}
	if len(segs) >= 2 && strings.EqualFold(segs[0], "people") {
		last := segs[len(segs)-1]
		return last, genericName.MatchString(last)
	}
	return singleSegment(Facebook, segs, genericName, "")
}
