package image

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nexusai/newshub/internal/feed"
)

func newTestResolver(allowFetch bool) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(allowFetch, 2*time.Second, logger)
}

func TestResolveThumbnailWins(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Thumbnail: "https://cdn.example.com/thumb.jpg",
		Media:     []feed.Attachment{{URL: "https://cdn.example.com/media.jpg", Type: "image/jpeg"}},
	}

	if got := r.Resolve(context.Background(), e); got != "https://cdn.example.com/thumb.jpg" {
		t.Fatalf("expected thumbnail, got %q", got)
	}
}

func TestResolveMediaContentByType(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Media: []feed.Attachment{{URL: "https://x/a.jpg", Type: "image/jpeg"}},
	}

	if got := r.Resolve(context.Background(), e); got != "https://x/a.jpg" {
		t.Fatalf("expected media content url, got %q", got)
	}
}

func TestResolveMediaContentByExtension(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Media: []feed.Attachment{
			{URL: "https://x/video.mp4", Type: "video/mp4"},
			{URL: "https://x/photo.png?w=800"},
		},
	}

	if got := r.Resolve(context.Background(), e); got != "https://x/photo.png?w=800" {
		t.Fatalf("expected extension match, got %q", got)
	}
}

func TestResolveEnclosure(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Enclosures: []feed.Attachment{
			{URL: "https://x/episode.mp3", Type: "audio/mpeg"},
			{URL: "https://x/cover.jpg", Type: "image/jpeg"},
		},
	}

	if got := r.Resolve(context.Background(), e); got != "https://x/cover.jpg" {
		t.Fatalf("expected image enclosure, got %q", got)
	}
}

func TestResolveContentImageSkipsChromeAndTiny(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Content: `<p>Intro</p>
			<img src="https://x/site-logo.png">
			<img src="https://x/spacer.gif" width="1" height="1">
			<img src="https://x/photo.jpg" width="640">`,
	}

	if got := r.Resolve(context.Background(), e); got != "https://x/photo.jpg" {
		t.Fatalf("expected content photo, got %q", got)
	}
}

func TestResolveSummaryImageWhenContentEmpty(t *testing.T) {
	r := newTestResolver(false)
	e := &feed.Entry{
		Summary: `<p>Teaser <img src="https://x/teaser.jpg"></p>`,
	}

	if got := r.Resolve(context.Background(), e); got != "https://x/teaser.jpg" {
		t.Fatalf("expected summary image, got %q", got)
	}
}

func TestResolveFallbackAlwaysValid(t *testing.T) {
	r := newTestResolver(false)

	for i := 0; i < 20; i++ {
		got := r.Resolve(context.Background(), &feed.Entry{})
		u, err := url.Parse(got)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			t.Fatalf("fallback is not a valid absolute URL: %q", got)
		}
		found := false
		for _, f := range FallbackImages {
			if f == got {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("fallback %q not from the stock pool", got)
		}
	}
}

func TestResolveNilEntryFallsBack(t *testing.T) {
	r := newTestResolver(false)
	if got := r.Resolve(context.Background(), nil); got == "" {
		t.Fatal("nil entry must still yield a URL")
	}
}

func TestResolveLivePageOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><head>
			<meta property="og:image" content="//cdn.example.com/og.jpg">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	r := newTestResolver(true)
	e := &feed.Entry{Link: srv.URL + "/story"}

	if got := r.Resolve(context.Background(), e); got != "https://cdn.example.com/og.jpg" {
		t.Fatalf("expected protocol-relative og:image resolved, got %q", got)
	}
}

func TestResolveLivePageTwitterFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><head>
			<meta name="twitter:image" content="https://cdn.example.com/tw.jpg">
		</head><body></body></html>`)
	}))
	defer srv.Close()

	r := newTestResolver(true)
	e := &feed.Entry{Link: srv.URL + "/story"}

	if got := r.Resolve(context.Background(), e); got != "https://cdn.example.com/tw.jpg" {
		t.Fatalf("expected twitter image, got %q", got)
	}
}

func TestResolveLivePageArticleImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html><body><article>
			<img src="/images/site-logo.png" width="400">
			<img src="/images/lead.jpg" width="800">
		</article></body></html>`)
	}))
	defer srv.Close()

	r := newTestResolver(true)
	e := &feed.Entry{Link: srv.URL + "/story"}

	want := srv.URL + "/images/lead.jpg"
	if got := r.Resolve(context.Background(), e); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestResolveLivePageErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestResolver(true)
	e := &feed.Entry{Link: srv.URL + "/story"}

	got := r.Resolve(context.Background(), e)
	if !strings.Contains(got, "unsplash.com") {
		t.Fatalf("expected stock fallback after server error, got %q", got)
	}
}
