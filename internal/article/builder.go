package article

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"time"

	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/image"
	"github.com/nexusai/newshub/internal/metrics"
	"github.com/nexusai/newshub/internal/normalize"
)

// idRange bounds article ids to a small, display-friendly integer space.
const idRange = 100000

// Builder turns one raw entry into an Article. Build never fails: each
// field degrades to its documented fallback independently.
type Builder struct {
	images          *image.Resolver
	maxSummaryWords int
	now             func() time.Time
}

// NewBuilder wires the builder to an image resolver. maxSummaryWords <= 0
// selects the default budget.
func NewBuilder(images *image.Resolver, maxSummaryWords int) *Builder {
	if maxSummaryWords <= 0 {
		maxSummaryWords = normalize.DefaultSummaryWords
	}
	return &Builder{
		images:          images,
		maxSummaryWords: maxSummaryWords,
		now:             time.Now,
	}
}

// Build normalizes entry into an Article attributed to src.
func (b *Builder) Build(ctx context.Context, e *feed.Entry, src feed.Source) Article {
	published := b.now()
	if e.Published != nil {
		published = *e.Published
	}

	// Full content tends to carry the real lede; feeds often truncate
	// the summary field mid-sentence.
	rawSummary := e.Content
	if rawSummary == "" {
		rawSummary = e.Summary
	}

	a := Article{
		ID:        linkID(e.Link),
		Title:     normalize.Title(e.Title),
		Summary:   normalize.Summary(rawSummary, b.maxSummaryWords),
		Link:      e.Link,
		Published: published,
		Image:     b.images.Resolve(ctx, e),
		Source: SourceInfo{
			Name: src.Name,
			URL:  src.Website,
			Logo: src.Logo,
		},
	}

	metrics.Global.IncrementArticlesBuilt()
	return a
}

// linkID derives a stable id from the article link so the same article
// keeps its identity across refresh cycles.
func linkID(link string) int {
	sum := sha1.Sum([]byte(link))
	return int(binary.BigEndian.Uint32(sum[:4]) % idRange)
}
