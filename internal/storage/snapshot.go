// Package storage persists the article cache as a flat JSON snapshot.
// The snapshot only exists to survive process restarts; the feeds remain
// the source of truth.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nexusai/newshub/internal/article"
)

// Snapshot reads and writes the cache snapshot file.
type Snapshot struct {
	path string
}

// NewSnapshot returns a Snapshot bound to path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

type snapshotFile struct {
	Articles  []article.Article `json:"articles"`
	Timestamp time.Time         `json:"timestamp"`
}

// Load reads the snapshot. A missing file is not an error; it returns an
// empty result so startup proceeds with an empty cache.
func (s *Snapshot) Load() ([]article.Article, time.Time, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, time.Time{}, nil
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return file.Articles, file.Timestamp, nil
}

// Save writes the current cache generation. Writes go through a temp
// file and rename so a crash cannot leave a half-written snapshot.
func (s *Snapshot) Save(articles []article.Article, updatedAt time.Time) error {
	data, err := json.MarshalIndent(snapshotFile{
		Articles:  articles,
		Timestamp: updatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
