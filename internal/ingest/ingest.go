// Package ingest runs the per-source pipeline: fetch a feed, filter its
// entries, build articles, and cap the per-source contribution. Source
// failures are isolated; a dead feed contributes nothing and the cycle
// goes on.
package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nexusai/newshub/internal/article"
	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/metrics"
	"github.com/nexusai/newshub/internal/relevance"
)

// Ingestor coordinates feed fetching, relevance filtering and article
// building across the configured sources.
type Ingestor struct {
	feeds        *feed.Client
	filter       *relevance.Filter
	builder      *article.Builder
	sources      []feed.Source
	maxPerSource int
	logger       *slog.Logger
}

// New returns an Ingestor over the given sources. maxPerSource bounds
// each source's contribution per cycle.
func New(feeds *feed.Client, filter *relevance.Filter, builder *article.Builder, sources []feed.Source, maxPerSource int, logger *slog.Logger) *Ingestor {
	if maxPerSource <= 0 {
		maxPerSource = 5
	}
	return &Ingestor{
		feeds:        feeds,
		filter:       filter,
		builder:      builder,
		sources:      sources,
		maxPerSource: maxPerSource,
		logger:       logger,
	}
}

// Sources returns the configured source list for introspection.
func (ig *Ingestor) Sources() []feed.Source {
	return ig.sources
}

// Ingest processes one source. Fetch or parse failure is logged and
// yields an empty slice; it never propagates.
func (ig *Ingestor) Ingest(ctx context.Context, src feed.Source) []article.Article {
	entries, err := ig.feeds.Fetch(ctx, src.URL)
	if err != nil {
		metrics.Global.IncrementFeedErrors()
		ig.logger.Error("feed fetch failed", "source", src.Name, "error", err)
		return nil
	}
	metrics.Global.IncrementFeedsFetched()

	articles := make([]article.Article, 0, ig.maxPerSource)
	for i := range entries {
		e := &entries[i]
		if !ig.filter.Relevant(e, src.TopicSpecific) {
			metrics.Global.IncrementEntriesFiltered()
			continue
		}
		articles = append(articles, ig.builder.Build(ctx, e, src))
		if len(articles) >= ig.maxPerSource {
			break
		}
	}

	ig.logger.Info("source ingested", "source", src.Name, "articles", len(articles))
	return articles
}

// IngestAll fans out one goroutine per source and concatenates the
// results in configured source order, so the cache's stable sort breaks
// publish-time ties by source position.
func (ig *Ingestor) IngestAll(ctx context.Context) []article.Article {
	if len(ig.sources) == 0 {
		return nil
	}

	perSource := make([][]article.Article, len(ig.sources))

	var wg sync.WaitGroup
	for i, src := range ig.sources {
		wg.Add(1)
		go func(i int, src feed.Source) {
			defer wg.Done()
			perSource[i] = ig.Ingest(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var all []article.Article
	for _, batch := range perSource {
		all = append(all, batch...)
	}
	return all
}
