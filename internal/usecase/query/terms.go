package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	influencerTerms = []string{
		`"influencer"`, `"content creator"`, `"digital creator"`,
		`"creator"`, `"public figure"`, `"ugc creator"`,
	}
	bioTerms = []string{
		`"business inquiries"`, `"business inquiry"`, `"brand deals"`, `"collab"`,
		`"collaboration"`, `"partnerships"`, `"ambassador"`, `"bookings"`,
		`"management"`, `"mgmt"`, `"email"`,
	}
)

// clean NFKC-normalizes s and trims surrounding whitespace.
func clean(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// quoted wraps s in double quotes unless it already is.
func quoted(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || (len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)) {
		return s
	}
	return `"` + s + `"`
}

// orGroup renders (a OR b OR c), the bare term for one, "" for none.
// Empty and repeated terms are dropped.
func orGroup(terms []string) string {
	uniq := dedupe(terms)
	switch len(uniq) {
	case 0:
		return ""
	case 1:
		return uniq[0]
	default:
		return "(" + strings.Join(uniq, " OR ") + ")"
	}
}

// join concatenates non-empty parts with single spaces.
func join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// alnum keeps letters and digits only.
func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hashtag renders #<alnum lowercased>, "" when nothing remains.
func hashtag(s string) string {
	s = strings.ToLower(alnum(s))
	if s == "" {
		return ""
	}
	return "#" + s
}

// locationParts splits a location on commas, dropping empty parts.
func locationParts(loc string) []string {
	var parts []string
	for _, p := range strings.Split(loc, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func hasArabic(s string) bool {
	for _, r := range s {
		if r >= '\u0600' && r <= '\u06ff' {
			return true
		}
	}
	return false
}
