// Package relevance decides whether a feed entry belongs to the site's
// topic. Matching is deliberately cheap: case-insensitive substring
// checks over the entry's visible text fields.
package relevance

import (
	"strings"

	"github.com/nexusai/newshub/internal/feed"
)

// Filter matches entries against a fixed keyword list.
type Filter struct {
	keywords []string
}

// New lowercases the keyword list once up front.
func New(keywords []string) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Filter{keywords: lowered}
}

// Relevant reports whether the entry should be ingested. Topic-specific
// sources and an empty keyword list always pass. Otherwise any keyword
// occurring in the title, summary or a category term passes.
func (f *Filter) Relevant(e *feed.Entry, sourceIsTopicSpecific bool) bool {
	if sourceIsTopicSpecific || len(f.keywords) == 0 {
		return true
	}
	if e == nil {
		return false
	}

	haystack := strings.ToLower(e.Title + " " + e.Summary)
	for _, k := range f.keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}

	for _, c := range e.Categories {
		c = strings.ToLower(c)
		for _, k := range f.keywords {
			if strings.Contains(c, k) {
				return true
			}
		}
	}

	return false
}
