// Tests for the data access layer. Every test runs against a fresh
// in-memory SQLite database with all migrations applied.

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/store"
	"github.com/vrsandeep/manga-sync/internal/testutil"
)

func strPtr(s string) *string { return &s }

func setupStore(t *testing.T) (*sql.DB, *store.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return db, store.New(db)
}

func mustWebsite(t *testing.T, s *store.Store, domain string) *models.Website {
	t.Helper()
	w, err := s.CreateWebsite(context.Background(), domain)
	if err != nil {
		t.Fatalf("CreateWebsite(%q) failed: %v", domain, err)
	}
	return w
}

func mustManga(t *testing.T, s *store.Store, name, domain, path string) *models.Manga {
	t.Helper()
	in := models.NewManga{Name: name}
	if domain != "" {
		in.WebsiteDomain = strPtr(domain)
		in.SourcePath = strPtr(path)
	}
	m, err := s.CreateManga(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateManga(%q) failed: %v", name, err)
	}
	return m
}

// insertChapter records a read position with an explicit timestamp so
// ordering is deterministic.
func insertChapter(t *testing.T, db *sql.DB, mangaID int64, number string, at time.Time) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO chapter (manga_id, number, updated_at) VALUES (?, ?, ?)", mangaID, number, at.UTC()); err != nil {
		t.Fatalf("Failed to insert chapter: %v", err)
	}
}
