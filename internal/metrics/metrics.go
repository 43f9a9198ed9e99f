package metrics

import (
	"sync"
	"time"
)

// Metrics tracks ingestion counters for the /debug endpoint.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched    int64
	FeedErrors      int64
	EntriesFiltered int64
	ArticlesBuilt   int64
	ImageFallbacks  int64

	// Timings
	LastRefreshDuration    time.Duration
	AverageRefreshDuration time.Duration
	TotalRefreshDuration   time.Duration
	RefreshCount           int64

	// Status
	LastRefreshTime time.Time
}

var Global = &Metrics{}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
}

func (m *Metrics) IncrementEntriesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesFiltered++
}

func (m *Metrics) IncrementArticlesBuilt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesBuilt++
}

func (m *Metrics) IncrementImageFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImageFallbacks++
}

func (m *Metrics) RecordRefresh(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRefreshDuration = duration
	m.TotalRefreshDuration += duration
	m.RefreshCount++
	m.AverageRefreshDuration = m.TotalRefreshDuration / time.Duration(m.RefreshCount)
	m.LastRefreshTime = time.Now()
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":      m.FeedsFetched,
		"feed_errors":        m.FeedErrors,
		"entries_filtered":   m.EntriesFiltered,
		"articles_built":     m.ArticlesBuilt,
		"image_fallbacks":    m.ImageFallbacks,
		"last_refresh_ms":    m.LastRefreshDuration.Milliseconds(),
		"average_refresh_ms": m.AverageRefreshDuration.Milliseconds(),
		"refresh_count":      m.RefreshCount,
		"last_refresh_time":  m.LastRefreshTime.Format(time.RFC3339),
	}
}
