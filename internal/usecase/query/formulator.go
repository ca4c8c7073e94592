// Package query turns a discovery request into search query variants.
package query

import (
	"strings"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
)

// Formulation rule names, in emission order.
const (
	RuleBroad            = "broad"
	RuleBroadInfluencer  = "broad_influencer"
	RuleKeywords         = "keywords"
	RuleHashtags         = "hashtags"
	RuleBioSignals       = "bio_signals"
	RuleLocationKeywords = "location_keywords"
	RuleNaturalLanguage  = "natural_language"
	RuleLocationPart     = "location_part"
	RuleSiteOnly         = "site_only"
	RuleSiteOnlyBlogger  = "site_only_blogger"
)

// Request holds the inputs of a web search formulation.
type Request struct {
	Topic    string
	Location string
	Keywords []string
	Platform platform.Platform
}

// Formulate builds the ordered, deduplicated query variants for a web
// search restricted to profile pages of req.Platform.
func Formulate(req Request) []search.Query {
	topic := clean(req.Topic)
	location := clean(req.Location)
	var keywords []string
	for _, k := range req.Keywords {
		if k = clean(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if topic == "" && location == "" && len(keywords) == 0 {
		return nil
	}

	topicTerm := quoted(topic)
	locTerm := quoted(location)
	parts := locationParts(location)
	partTerms := make([]string, 0, len(parts))
	for _, p := range parts {
		partTerms = append(partTerms, quoted(p))
	}
	locGroup := orGroup(append([]string{locTerm}, partTerms...))

	kwTerms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		kwTerms = append(kwTerms, quoted(k))
	}
	kwGroup := orGroup(kwTerms)
	tagGroup := orGroup(hashtagTerms(keywords))
	inflGroup := orGroup(influencerTerms)
	bioGroup := orGroup(bioTerms)

	f := req.Platform.Filter()
	excludes := make([]string, 0, len(f.Excludes))
	for _, e := range f.Excludes {
		excludes = append(excludes, "-inurl:"+e)
	}
	filters := join(f.Site, strings.Join(excludes, " "), f.Includes)

	b := &builder{seen: make(map[string]struct{})}

	b.add(RuleBroad, filters, topicTerm, locGroup)
	b.add(RuleBroadInfluencer, filters, topicTerm, locGroup, inflGroup)
	if kwGroup != "" {
		b.add(RuleKeywords, filters, topicTerm, kwGroup, locGroup, inflGroup)
	}
	if tagGroup != "" && hashtagPlatform(req.Platform) {
		b.add(RuleHashtags, filters, topicTerm, tagGroup, locGroup, inflGroup)
	}
	b.add(RuleBioSignals, filters, topicTerm, locGroup, bioGroup)
	if kwGroup != "" {
		b.add(RuleLocationKeywords, filters, locGroup, inflGroup, kwGroup)
	}
	if topic != "" && location != "" {
		b.add(RuleNaturalLanguage, filters, locTerm, topic+" influencer")
	}
	if len(partTerms) > 1 {
		for _, part := range partTerms {
			b.add(RuleLocationPart, filters, topicTerm, part, inflGroup)
		}
	}
	b.add(RuleSiteOnly, f.Site, topicTerm, locGroup, inflGroup)
	b.add(RuleSiteOnlyBlogger, f.Site, topicTerm, "(influencer OR content creator OR blogger)", locGroup)

	return b.queries
}

// hashtagTerms renders #keyword without spaces plus an alphanumeric-only
// variant when it differs.
func hashtagTerms(keywords []string) []string {
	var tags []string
	for _, k := range keywords {
		compact := strings.ToLower(strings.ReplaceAll(k, " ", ""))
		tags = append(tags, "#"+compact)
		if comp := strings.ToLower(alnum(k)); comp != "" && comp != compact {
			tags = append(tags, "#"+comp)
		}
	}
	return tags
}

func hashtagPlatform(p platform.Platform) bool {
	return p == platform.Instagram || p == platform.X || p == platform.TikTok
}

type builder struct {
	queries []search.Query
	seen    map[string]struct{}
}

// add emits prefix + terms unless the terms are all empty or the text was
// already emitted. Terms are the parts beyond the site filters, so a
// variant made of filters alone is never produced.
func (b *builder) add(rule, prefix string, terms ...string) {
	body := join(terms...)
	if body == "" {
		return
	}
	text := join(prefix, body)
	if _, ok := b.seen[text]; ok {
		return
	}
	b.seen[text] = struct{}{}
	b.queries = append(b.queries, search.NewQuery(len(b.queries), text, rule))
}
