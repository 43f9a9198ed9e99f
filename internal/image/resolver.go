// Package image finds a representative image URL for a feed entry.
// Feeds embed media in wildly inconsistent ways, so resolution walks an
// ordered chain of strategies and always produces a usable URL: the
// final fallback is a pseudo-random pick from a fixed stock pool.
package image

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/nexusai/newshub/internal/feed"
	"github.com/nexusai/newshub/internal/metrics"
)

const (
	// minDeclaredPx rejects declared-tiny images inside entry HTML.
	minDeclaredPx = 50
	// minPageImagePx is the bar for images scraped off the live page.
	minPageImagePx = 200

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// skipWords flag filenames that are almost certainly chrome, not content.
var skipWords = []string{"icon", "logo", "avatar", "button", "pixel", "tracking"}

// imageExtensions recognized when an attachment omits its MIME type.
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// FallbackImages is the stock pool used when no real image is resolvable.
var FallbackImages = []string{
	"https://images.unsplash.com/photo-1677442135046-c10d516d84c6?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1529107386315-e1a2ed48a620?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1532187863486-abf9dbad1b69?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1620712943543-bcc4688e7485?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1526304640581-d334cdbbf45e?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1616469829581-73993eb86b02?q=100&w=2000&auto=format&fit=crop",
	"https://images.unsplash.com/photo-1557838429-06a189a5cb26?q=100&w=2000&auto=format&fit=crop",
}

// Resolver resolves entry images. Live-page fetches are optional,
// short-timeout and rate limited so one slow site cannot stall a
// refresh cycle.
type Resolver struct {
	client     *http.Client
	limiter    *rate.Limiter
	allowFetch bool
	logger     *slog.Logger
}

// NewResolver builds a Resolver. fetchTimeout bounds each live-page
// request; allowFetch gates the live-page strategy entirely.
func NewResolver(allowFetch bool, fetchTimeout time.Duration, logger *slog.Logger) *Resolver {
	if fetchTimeout <= 0 {
		fetchTimeout = 3 * time.Second
	}
	return &Resolver{
		client:     &http.Client{Timeout: fetchTimeout},
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		allowFetch: allowFetch,
		logger:     logger,
	}
}

// Resolve returns an absolute image URL for the entry. It never fails;
// the stock pool backs every other strategy.
func (r *Resolver) Resolve(ctx context.Context, e *feed.Entry) string {
	if e != nil {
		if u := r.fromAttachments(e); u != "" {
			return u
		}
		if u := firstContentImage(e.Content); u != "" {
			return u
		}
		if u := firstContentImage(e.Summary); u != "" {
			return u
		}
		if r.allowFetch && e.Link != "" {
			if u := r.fromArticlePage(ctx, e.Link); u != "" {
				return u
			}
		}
	}

	metrics.Global.IncrementImageFallbacks()
	return FallbackImages[rand.IntN(len(FallbackImages))]
}

// fromAttachments checks the declared media on the entry: thumbnail
// first, then media:content, then enclosures.
func (r *Resolver) fromAttachments(e *feed.Entry) string {
	if isValidImageURL(e.Thumbnail) {
		return e.Thumbnail
	}

	for _, m := range e.Media {
		if !isValidImageURL(m.URL) {
			continue
		}
		if strings.HasPrefix(m.Type, "image/") || hasImageExtension(m.URL) {
			return m.URL
		}
	}

	for _, enc := range e.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && isValidImageURL(enc.URL) {
			return enc.URL
		}
	}

	return ""
}

// firstContentImage scans an HTML block for the first img that is not a
// declared-tiny or icon-named image.
func firstContentImage(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || !isValidImageURL(src) {
			return true
		}
		if declaredTiny(s, minDeclaredPx) || looksLikeChrome(src) {
			return true
		}
		found = src
		return false
	})
	return found
}

// fromArticlePage fetches the live page and looks for an Open Graph
// image, then a Twitter card image, then any large enough image in the
// article body. Any failure falls through to the stock pool.
func (r *Resolver) fromArticlePage(ctx context.Context, link string) string {
	if err := r.limiter.Wait(ctx); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("article page fetch failed", "url", link, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	if u, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && u != "" {
		return resolveRelative(u, link)
	}
	if u, ok := doc.Find(`meta[name="twitter:image"]`).Attr("content"); ok && u != "" {
		return resolveRelative(u, link)
	}

	imgs := doc.Find("article img, main img")
	if imgs.Length() == 0 {
		imgs = doc.Find("img")
	}

	var found string
	imgs.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" || looksLikeChrome(src) {
			return true
		}
		if declaredAtLeast(s, minPageImagePx) {
			found = resolveRelative(src, link)
			return false
		}
		return true
	})
	return found
}

// resolveRelative fixes protocol-relative and root-relative srcs against
// the page's own domain.
func resolveRelative(src, pageURL string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		u, err := url.Parse(pageURL)
		if err != nil || u.Host == "" {
			return src
		}
		return u.Scheme + "://" + u.Host + src
	default:
		return src
	}
}

func looksLikeChrome(src string) bool {
	lower := strings.ToLower(src)
	for _, w := range skipWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// declaredTiny reports whether either declared dimension is under minPx.
// Images with no declared dimensions pass.
func declaredTiny(s *goquery.Selection, minPx int) bool {
	for _, attr := range []string{"width", "height"} {
		if v, ok := s.Attr(attr); ok {
			if n, err := strconv.Atoi(v); err == nil && n < minPx {
				return true
			}
		}
	}
	return false
}

// declaredAtLeast requires at least one declared dimension >= minPx.
func declaredAtLeast(s *goquery.Selection, minPx int) bool {
	for _, attr := range []string{"width", "height"} {
		if v, ok := s.Attr(attr); ok {
			if n, err := strconv.Atoi(v); err == nil && n >= minPx {
				return true
			}
		}
	}
	return false
}

func hasImageExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// isValidImageURL accepts absolute http(s) URLs only; entry HTML can
// carry relative srcs that nothing downstream could load.
func isValidImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
