// Package article defines the normalized article record and the builder
// that produces it from raw feed entries.
package article

import "time"

// SourceInfo is the attribution block copied from the owning feed source.
type SourceInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo"`
}

// Article is the cache-resident representation of one feed entry.
// Articles are created fresh each ingestion cycle and never mutated
// afterwards; a whole generation is swapped into the cache atomically.
type Article struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Link      string     `json:"link"`
	Published time.Time  `json:"published"`
	Image     string     `json:"image"`
	Source    SourceInfo `json:"source"`
	IsHero    bool       `json:"isHero"`
}
