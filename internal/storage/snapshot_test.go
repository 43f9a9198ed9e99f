package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nexusai/newshub/internal/article"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	snap := NewSnapshot(path)

	updatedAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	articles := []article.Article{
		{ID: 42, Title: "First", Link: "https://example.com/1", Published: updatedAt, IsHero: true,
			Source: article.SourceInfo{Name: "TechCrunch", URL: "https://techcrunch.com"}},
		{ID: 7, Title: "Second", Link: "https://example.com/2", Published: updatedAt.Add(-time.Hour)},
	}

	if err := snap.Save(articles, updatedAt); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, gotTime, err := snap.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !gotTime.Equal(updatedAt) {
		t.Fatalf("expected timestamp %v, got %v", updatedAt, gotTime)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].ID != 42 || got[0].Title != "First" || !got[0].IsHero {
		t.Fatalf("first article mangled: %+v", got[0])
	}
	if got[0].Source.Name != "TechCrunch" {
		t.Fatalf("source attribution lost: %+v", got[0].Source)
	}
}

func TestSnapshotLoadMissingFile(t *testing.T) {
	snap := NewSnapshot(filepath.Join(t.TempDir(), "missing.json"))

	articles, updatedAt, err := snap.Load()
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if articles != nil || !updatedAt.IsZero() {
		t.Fatalf("expected empty result, got %d articles at %v", len(articles), updatedAt)
	}
}

func TestSnapshotLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewSnapshot(path).Load(); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestSnapshotSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	snap := NewSnapshot(path)

	if err := snap.Save(nil, time.Now()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after save")
	}
}
