// Package cache holds the current article generation and its freshness
// policy. Readers always see a complete generation: refresh builds the
// next one off to the side and swaps it in under a short write lock.
package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nexusai/newshub/internal/article"
	"github.com/nexusai/newshub/internal/metrics"
	"github.com/nexusai/newshub/internal/storage"
)

// Ingestor produces a fresh article generation from all sources.
type Ingestor interface {
	IngestAll(ctx context.Context) []article.Article
}

// Manager owns the cached articles. All methods are safe for concurrent
// use. A dedicated refresh mutex keeps timer-driven and lazy refreshes
// mutually exclusive without blocking readers.
type Manager struct {
	mu          sync.RWMutex
	articles    []article.Article
	lastUpdated time.Time

	refreshMu sync.Mutex

	ingestor   Ingestor
	staleAfter time.Duration
	snapshot   *storage.Snapshot
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager builds a Manager. snapshot may be nil to disable
// persistence.
func NewManager(ingestor Ingestor, staleAfter time.Duration, snapshot *storage.Snapshot, logger *slog.Logger) *Manager {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &Manager{
		ingestor:   ingestor,
		staleAfter: staleAfter,
		snapshot:   snapshot,
		logger:     logger,
		now:        time.Now,
	}
}

// LoadSnapshot seeds the cache from the snapshot file, if one exists.
// A corrupt or unreadable snapshot is logged and ignored.
func (m *Manager) LoadSnapshot() {
	if m.snapshot == nil {
		return
	}
	articles, updatedAt, err := m.snapshot.Load()
	if err != nil {
		m.logger.Warn("snapshot load failed, starting empty", "error", err)
		return
	}
	if len(articles) == 0 {
		return
	}

	markHero(articles)

	m.mu.Lock()
	m.articles = articles
	m.lastUpdated = updatedAt
	m.mu.Unlock()

	m.logger.Info("cache seeded from snapshot", "articles", len(articles), "updated_at", updatedAt)
}

// Refresh rebuilds the cache from all sources. Safe to call directly;
// concurrent callers are serialized, and callers that waited behind an
// in-flight refresh skip the redundant rebuild.
func (m *Manager) Refresh(ctx context.Context) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	m.refresh(ctx)
}

// refresh must be called with refreshMu held.
func (m *Manager) refresh(ctx context.Context) {
	start := time.Now()

	articles := m.ingestor.IngestAll(ctx)

	// Stable sort: ties on publish time keep configured source order.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})
	markHero(articles)

	m.mu.Lock()
	m.articles = articles
	m.lastUpdated = m.now()
	updatedAt := m.lastUpdated
	m.mu.Unlock()

	metrics.Global.RecordRefresh(time.Since(start))
	m.logger.Info("cache refreshed", "articles", len(articles), "duration", time.Since(start))

	if m.snapshot != nil {
		if err := m.snapshot.Save(articles, updatedAt); err != nil {
			m.logger.Error("snapshot save failed", "error", err)
		}
	}
}

// markHero clears all hero flags and designates the first (newest)
// article. Exactly one hero exists whenever the slice is non-empty.
func markHero(articles []article.Article) {
	for i := range articles {
		articles[i].IsHero = false
	}
	if len(articles) > 0 {
		articles[0].IsHero = true
	}
}

// ensureFresh refreshes if the cache is empty or past its stale timeout.
// Callers queued behind an in-flight refresh observe its result and do
// not refresh again.
func (m *Manager) ensureFresh(ctx context.Context) {
	if !m.isStale() {
		return
	}

	before := m.LastUpdated()

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if m.LastUpdated().After(before) {
		return
	}
	m.refresh(ctx)
}

func (m *Manager) isStale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastUpdated.IsZero() || len(m.articles) == 0 {
		return true
	}
	return m.now().Sub(m.lastUpdated) > m.staleAfter
}

// Articles returns up to limit non-hero articles, newest first, plus the
// total article count and the cache timestamp. A stale or empty cache is
// refreshed first. The hero is excluded because it has its own endpoint.
func (m *Manager) Articles(ctx context.Context, limit int) ([]article.Article, int, time.Time) {
	m.ensureFresh(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]article.Article, 0, limit)
	for _, a := range m.articles {
		if a.IsHero {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, len(m.articles), m.lastUpdated
}

// Hero returns the current hero article, or nil when the cache is empty.
// Should no article carry the flag, the newest one stands in.
func (m *Manager) Hero(ctx context.Context) (*article.Article, time.Time) {
	m.ensureFresh(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.articles {
		if a.IsHero {
			hero := a
			return &hero, m.lastUpdated
		}
	}
	if len(m.articles) > 0 {
		hero := m.articles[0]
		return &hero, m.lastUpdated
	}
	return nil, m.lastUpdated
}

// All returns a copy of the full current generation, hero included.
func (m *Manager) All(ctx context.Context) ([]article.Article, time.Time) {
	m.ensureFresh(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]article.Article, len(m.articles))
	copy(out, m.articles)
	return out, m.lastUpdated
}

// Count returns the cached article count without triggering a refresh.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.articles)
}

// LastUpdated returns the cache timestamp without triggering a refresh.
func (m *Manager) LastUpdated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}

// Run refreshes immediately and then on every interval tick until ctx is
// cancelled. It blocks, so callers start it in a goroutine.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	m.logger.Info("background refresh started", "interval", interval)

	m.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("background refresh stopped")
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
