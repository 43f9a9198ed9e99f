package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nexusai/newshub/internal/article"
	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/image"
	"github.com/nexusai/newshub/internal/relevance"
	"github.com/nexusai/newshub/internal/retry"
)

func rssWithItems(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>t</title><link>https://example.com</link><description>d</description>
` + strings.Join(items, "\n") + `
</channel></rss>`
}

func rssItem(n int, title string) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>https://example.com/story-%d</link>
<description>story %d</description>
<pubDate>Mon, 02 Jun 2025 %02d:00:00 GMT</pubDate>
</item>`, title, n, n, n%24)
}

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, body)
	}))
}

func newIngestor(sources []feed.Source, keywords []string, maxPerSource int) *Ingestor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := image.NewResolver(false, time.Second, logger)
	builder := article.NewBuilder(resolver, 0)
	client := feed.NewClient(5*time.Second, retry.Config{Attempts: 1})
	return New(client, relevance.New(keywords), builder, sources, maxPerSource, logger)
}

func TestIngestCapsPerSource(t *testing.T) {
	var items []string
	for i := 1; i <= 8; i++ {
		items = append(items, rssItem(i, fmt.Sprintf("Story %d", i)))
	}
	srv := serveRSS(t, rssWithItems(items...))
	defer srv.Close()

	src := feed.Source{Name: "Test", URL: srv.URL, TopicSpecific: true}
	ig := newIngestor([]feed.Source{src}, nil, 5)

	got := ig.Ingest(context.Background(), src)
	if len(got) != 5 {
		t.Fatalf("expected per-source cap of 5, got %d", len(got))
	}
}

func TestIngestAppliesRelevanceFilter(t *testing.T) {
	srv := serveRSS(t, rssWithItems(
		rssItem(1, "AI model released"),
		rssItem(2, "Gardening tips for spring"),
		rssItem(3, "Machine learning in practice"),
	))
	defer srv.Close()

	src := feed.Source{Name: "Mixed", URL: srv.URL}
	ig := newIngestor([]feed.Source{src}, []string{"ai", "machine learning"}, 5)

	got := ig.Ingest(context.Background(), src)
	if len(got) != 2 {
		t.Fatalf("expected 2 relevant articles, got %d", len(got))
	}
	for _, a := range got {
		if strings.Contains(a.Title, "Gardening") {
			t.Fatalf("irrelevant article slipped through: %q", a.Title)
		}
	}
}

func TestIngestSourceFailureIsIsolated(t *testing.T) {
	good1 := serveRSS(t, rssWithItems(rssItem(1, "From good one")))
	defer good1.Close()
	good2 := serveRSS(t, rssWithItems(rssItem(2, "From good two")))
	defer good2.Close()

	dead := serveRSS(t, "")
	dead.Close() // refuses connections

	sources := []feed.Source{
		{Name: "GoodOne", URL: good1.URL, TopicSpecific: true},
		{Name: "Dead", URL: dead.URL, TopicSpecific: true},
		{Name: "GoodTwo", URL: good2.URL, TopicSpecific: true},
	}
	ig := newIngestor(sources, nil, 5)

	got := ig.IngestAll(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected articles from the two live sources, got %d", len(got))
	}
	if got[0].Source.Name != "GoodOne" || got[1].Source.Name != "GoodTwo" {
		t.Fatalf("source order not preserved: %q, %q", got[0].Source.Name, got[1].Source.Name)
	}
}

func TestIngestAllEmptySources(t *testing.T) {
	ig := newIngestor(nil, nil, 5)
	if got := ig.IngestAll(context.Background()); len(got) != 0 {
		t.Fatalf("expected no articles, got %d", len(got))
	}
}

func TestIngestAllConcatenatesInSourceOrder(t *testing.T) {
	a := serveRSS(t, rssWithItems(rssItem(1, "Alpha")))
	defer a.Close()
	b := serveRSS(t, rssWithItems(rssItem(2, "Beta")))
	defer b.Close()

	sources := []feed.Source{
		{Name: "A", URL: a.URL, TopicSpecific: true},
		{Name: "B", URL: b.URL, TopicSpecific: true},
	}
	ig := newIngestor(sources, nil, 5)

	got := ig.IngestAll(context.Background())
	if len(got) != 2 || got[0].Title != "Alpha" || got[1].Title != "Beta" {
		t.Fatalf("unexpected aggregation: %+v", got)
	}
}
