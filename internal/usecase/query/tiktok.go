package query

import "github.com/kailas-cloud/creatorscout/internal/domain/search"

// MaxTikTokQueries caps the phrases sent to TikTok native search.
const MaxTikTokQueries = 10

// FormulateTikTok builds creator-focused TikTok native search phrases
// around the city (first comma part of location).
func FormulateTikTok(topic, location string, keywords []string) []search.Query {
	topic = clean(topic)
	location = clean(location)
	var city string
	if parts := locationParts(location); len(parts) > 0 {
		city = parts[0]
	}
	var kws []string
	for _, k := range keywords {
		if k = clean(k); k != "" {
			kws = append(kws, k)
		}
	}

	b := &builder{seen: make(map[string]struct{})}
	add := func(rule string, parts ...string) { b.add(rule, "", parts...) }
	both := city != "" && topic != ""

	if both {
		cityTag, topicTag := hashtag(city), hashtag(topic)
		add("tiktok_hashtags", cityTag, topicTag, hashtag(city+"creator"))
		add("tiktok_hashtags", cityTag, topicTag, hashtag(city+"blogger"))
		add("tiktok_hashtags", cityTag, hashtag(topic+"blogger"), hashtag(topic+"creator"))

		add("tiktok_blogger", city, topic, "blogger")
		add("tiktok_blogger", city, topic, "content creator")
		add("tiktok_blogger", city, topic, "influencer")
		add("tiktok_blogger", topic, "blogger", city)
		add("tiktok_blogger", topic, "creator", city)

		add("tiktok_vlog", city, topic, "vlog")
		add("tiktok_vlog", city, topic, "vlogger")
		add("tiktok_vlog", topic, "vlog", city)
		add("tiktok_vlog", "daily", topic, "vlog", city)

		add("tiktok_review", city, topic, "review creator")
		add("tiktok_review", topic, "guide", city, "blogger")
		add("tiktok_review", city, topic, "recommendations blogger")
		add("tiktok_review", "local", topic, "creator", city)
	}

	if city != "" {
		add("tiktok_community", hashtag(city+"foodiecreator"), topic)
		add("tiktok_community", hashtag(city+"foodieblogger"), topic)
		add("tiktok_community", hashtag(city+"foodies"), "creator", topic)
	}

	if both {
		add("tiktok_natural", quoted(join(city, topic, "blogger")))
		add("tiktok_natural", quoted(join(topic, "content creator", city)))
		add("tiktok_natural", quoted(join(city, "based", topic, "creator")))
		add("tiktok_natural", quoted(join("local", topic, "influencer", city)))

		for _, kw := range kws[:min(2, len(kws))] {
			add("tiktok_keywords", city, topic, kw, "creator")
			add("tiktok_keywords", topic, kw, "blogger", city)
		}

		add("tiktok_trending", "trending", topic, "creator", city)
		add("tiktok_trending", city, topic, "tiktoker")
		add("tiktok_trending", "viral", topic, "creator", city)
		add("tiktok_trending", "famous", topic, "blogger", city)
	}

	if city != "" && (hasArabic(location) || hasArabic(topic)) {
		add("tiktok_arabic", city, topic, "مؤثر")
		add("tiktok_arabic", city, topic, "مدون")
	}

	if both {
		add("tiktok_collab", city, topic, "creator collab")
		add("tiktok_collab", topic, "blogger", city, "partnership")
		add("tiktok_collab", "brand deal", topic, "creator", city)

		add("tiktok_account", city, topic, "account")
		add("tiktok_account", topic, "channel", city)
		add("tiktok_account", "follow", city, topic, "creator")

		add("tiktok_lifestyle", "day in life", topic, "creator", city)
		add("tiktok_lifestyle", city, topic, "lifestyle blogger")
		add("tiktok_lifestyle", "behind scenes", topic, "creator", city)
	}

	if len(b.queries) > MaxTikTokQueries {
		return b.queries[:MaxTikTokQueries]
	}
	return b.queries
}
