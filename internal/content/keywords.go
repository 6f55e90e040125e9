package content

import "strings"

// categoryKeywords maps canonical categories to the keywords that select
// them. Order matters: the first category whose keyword matches wins.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"politics", []string{"politics", "political", "election", "government", "senate", "president", "governor", "policy", "parliament", "minister", "democracy"}},
	{"technology", []string{"technology", "tech", "ai", "artificial intelligence", "software", "startup", "gadget", "internet", "computing", "cyber", "smartphone"}},
	{"business", []string{"business", "economy", "economic", "market", "finance", "financial", "trade", "investment", "stock", "banking", "entrepreneur"}},
	{"sports", []string{"sports", "sport", "football", "soccer", "basketball", "tennis", "athletics", "olympics", "league", "tournament", "match"}},
	{"entertainment", []string{"entertainment", "music", "movie", "film", "celebrity", "nollywood", "concert", "album", "comedy", "drama"}},
	{"health", []string{"health", "medical", "medicine", "hospital", "disease", "vaccine", "wellness", "doctor", "fitness"}},
	{"science", []string{"science", "scientific", "research", "study", "space", "climate", "physics", "biology", "discovery"}},
	{"world", []string{"world", "international", "global", "foreign", "diplomacy", "united nations"}},
}

// InferCategory classifies an item. Explicit categories take priority:
// the first one is matched against the keyword table and falls back to
// its own lowercased text. Without explicit categories the title and
// description are scanned, then the caller default applies.
func InferCategory(categories []string, title, description, fallback string) string {
	if fallback == "" {
		fallback = "general"
	}

	if len(categories) > 0 {
		first := strings.ToLower(strings.TrimSpace(categories[0]))
		if first != "" {
			if name, ok := matchKeyword(first); ok {
				return name
			}
			return first
		}
	}

	text := strings.ToLower(title + " " + description)
	if name, ok := matchKeyword(text); ok {
		return name
	}

	return fallback
}

func matchKeyword(text string) (string, bool) {
	words := wordSet(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(keyword, " ") {
				if strings.Contains(text, keyword) {
					return entry.name, true
				}
				continue
			}
			if words[keyword] {
				return entry.name, true
			}
		}
	}
	return "", false
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		set[word] = true
	}
	return set
}
