// Package normalize turns raw feed text and HTML fragments into clean,
// bounded plain text. Every function degrades to a safe placeholder
// instead of returning an error: one malformed entry must never abort
// an ingestion cycle.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultSummaryWords is the word budget applied to summaries.
	DefaultSummaryWords = 50

	// FallbackSummary is returned when no usable summary text exists.
	FallbackSummary = "Read the full article for more information."

	// FallbackTitle is returned when an entry carries no title.
	FallbackTitle = "Untitled Article"
)

// replacements maps HTML entities and smart Unicode punctuation to plain
// ASCII. Entities are normally decoded during HTML parsing, but plain-text
// feed fields can still carry them verbatim.
var replacements = [...][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", "\""},
	{"&apos;", "'"},
	{"’", "'"},
	{"‘", "'"},
	{"“", "\""},
	{"”", "\""},
	{"—", "-"},
	{"–", "-"},
	{"\u00a0", " "}, // non-breaking space
}

// Summary extracts visible text from raw HTML (or plain text), cleans it
// up and truncates it at a word boundary. Truncated output ends with an
// ellipsis marker attached to the last word, which keeps the function
// idempotent: re-normalizing its own output changes nothing.
func Summary(raw string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultSummaryWords
	}

	text := CleanText(extractText(raw))
	if text == "" {
		return FallbackSummary
	}

	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

// Title cleans a raw title without applying the summary word budget.
func Title(raw string) string {
	text := CleanText(extractText(raw))
	if text == "" {
		return FallbackTitle
	}
	return text
}

// CleanText fixes entities and smart punctuation and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r[0], r[1])
	}
	return strings.Join(strings.Fields(text), " ")
}

// extractText strips markup from an HTML fragment. Script and style
// contents are removed entirely; the first paragraph is preferred over
// the whole document text so boilerplate below the lede is dropped.
// Plain text passes through unchanged apart from whitespace handling.
func extractText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// html parsing is forgiving; an error here means the input is
		// hopeless, so fall back to the raw string sans tags.
		return stripTags(raw)
	}

	doc.Find("script, style").Remove()

	if p := doc.Find("p").First(); p.Length() > 0 {
		if text := strings.TrimSpace(p.Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(doc.Text())
}

// stripTags is the last-resort tag remover for input goquery refuses.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
