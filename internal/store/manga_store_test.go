package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/store"
)

func TestCreateAndGetManga(t *testing.T) {
	db, s := setupStore(t)
	ctx := context.Background()
	mustWebsite(t, s, "www.mangaread.org")

	t.Run("without source", func(t *testing.T) {
		m, err := s.CreateManga(ctx, models.NewManga{Name: "  Solo  ", Cover: "c.jpg", CoverSmall: "cs.jpg"})
		if err != nil {
			t.Fatalf("CreateManga failed: %v", err)
		}
		if m.Name != "Solo" {
			t.Errorf("Expected trimmed name 'Solo', got %q", m.Name)
		}

		detail, err := s.GetManga(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetManga failed: %v", err)
		}
		if detail.CurrentChapter != nil || detail.LastReadAt != nil || detail.NumberUnreadChapter != nil {
			t.Errorf("Expected empty reading state, got %+v", detail)
		}
	})

	t.Run("with unknown website rolls back", func(t *testing.T) {
		_, err := s.CreateManga(ctx, models.NewManga{
			Name: "Ghost", SourcePath: strPtr("/ghost"), WebsiteDomain: strPtr("nope.example"),
		})
		if !errors.Is(err, store.ErrUnknownWebsite) {
			t.Fatalf("Expected ErrUnknownWebsite, got %v", err)
		}
		var count int
		db.QueryRow("SELECT COUNT(*) FROM manga WHERE name = 'Ghost'").Scan(&count)
		if count != 0 {
			t.Errorf("Expected manga insert to be rolled back, found %d rows", count)
		}
	})

	t.Run("detail carries reading state", func(t *testing.T) {
		m := mustManga(t, s, "Read", "www.mangaread.org", "/manga/read")
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		insertChapter(t, db, m.ID, "chapter-7", at)

		detail, err := s.GetManga(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetManga failed: %v", err)
		}
		if detail.CurrentChapter == nil || *detail.CurrentChapter != "chapter-7" {
			t.Errorf("Expected current chapter 'chapter-7', got %v", detail.CurrentChapter)
		}
		if detail.LastReadAt == nil || !detail.LastReadAt.Equal(at) {
			t.Errorf("Expected last read at %v, got %v", at, detail.LastReadAt)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := s.GetManga(ctx, 999); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestListManga(t *testing.T) {
	db, s := setupStore(t)
	ctx := context.Background()
	mustWebsite(t, s, "www.mangaread.org")
	mustWebsite(t, s, "mangabuddy.com")

	old := mustManga(t, s, "Old Read", "www.mangaread.org", "/old")
	recent := mustManga(t, s, "Recent Read", "mangabuddy.com", "/recent")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	insertChapter(t, db, old.ID, "chapter-1", base)
	insertChapter(t, db, recent.ID, "chapter-9", base.Add(48*time.Hour))

	items, err := s.ListManga(ctx, models.MangaFilter{})
	if err != nil {
		t.Fatalf("ListManga failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != recent.ID {
		t.Fatalf("Expected most recently read first, got %+v", items)
	}

	items, _ = s.ListManga(ctx, models.MangaFilter{ReadAtAsc: true})
	if len(items) != 2 || items[0].ID != old.ID {
		t.Errorf("Expected least recently read first, got %+v", items)
	}

	items, _ = s.ListManga(ctx, models.MangaFilter{Text: "Old"})
	if len(items) != 1 || items[0].ID != old.ID {
		t.Errorf("Expected text filter to match 'Old Read' only, got %+v", items)
	}

	items, _ = s.ListManga(ctx, models.MangaFilter{Website: "mangabuddy.com"})
	if len(items) != 1 || items[0].ID != recent.ID {
		t.Errorf("Expected website filter to match 'Recent Read' only, got %+v", items)
	}

	items, _ = s.ListManga(ctx, models.MangaFilter{Page: 2, Size: 1})
	if len(items) != 1 || items[0].ID != old.ID {
		t.Errorf("Expected second page to hold 'Old Read', got %+v", items)
	}
}

func TestUpdateManga(t *testing.T) {
	db, s := setupStore(t)
	ctx := context.Background()
	mustWebsite(t, s, "mangabuddy.com")
	mustWebsite(t, s, "www.mangaread.org")
	m := mustManga(t, s, "Target", "mangabuddy.com", "/target")

	t.Run("fields only", func(t *testing.T) {
		sourceID, err := s.UpdateManga(ctx, m.ID, models.MangaUpdate{Name: strPtr("Renamed")})
		if err != nil {
			t.Fatalf("UpdateManga failed: %v", err)
		}
		if sourceID != nil {
			t.Errorf("Expected no source id without website_domain, got %d", *sourceID)
		}
		detail, _ := s.GetManga(ctx, m.ID)
		if detail.Name != "Renamed" {
			t.Errorf("Expected name 'Renamed', got %q", detail.Name)
		}
	})

	t.Run("chapter recorded once", func(t *testing.T) {
		update := models.MangaUpdate{ChapterNumber: strPtr("chapter-5"), WebsiteDomain: strPtr("mangabuddy.com")}
		for i := 0; i < 2; i++ {
			sourceID, err := s.UpdateManga(ctx, m.ID, update)
			if err != nil {
				t.Fatalf("UpdateManga failed: %v", err)
			}
			if sourceID == nil {
				t.Fatal("Expected the mangabuddy source id")
			}
		}
		history, err := s.History(ctx, m.ID)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 1 || history[0].Number != "chapter-5" {
			t.Errorf("Expected a single history row for an unchanged chapter, got %+v", history)
		}
	})

	t.Run("moving a source clears resolved state", func(t *testing.T) {
		sources, _ := s.GetSourcesByManga(ctx, m.ID)
		s.UpdateExternalID(ctx, sources[0].ID, "42")
		s.UpdateUnreadCount(ctx, sources[0].ID, 4)

		_, err := s.UpdateManga(ctx, m.ID, models.MangaUpdate{
			WebsiteDomain: strPtr("mangabuddy.com"), SourcePath: strPtr("/target-new/"),
		})
		if err != nil {
			t.Fatalf("UpdateManga failed: %v", err)
		}
		sources, _ = s.GetSourcesByManga(ctx, m.ID)
		if len(sources) != 1 {
			t.Fatalf("Expected the source to be updated in place, got %d sources", len(sources))
		}
		src := sources[0]
		if src.Path != "/target-new" || src.ExternalMangaID != nil || src.NumberUnreadChapter != nil {
			t.Errorf("Expected moved source with cleared state, got %+v", src)
		}
	})

	t.Run("domain without source", func(t *testing.T) {
		_, err := s.UpdateManga(ctx, m.ID, models.MangaUpdate{WebsiteDomain: strPtr("www.mangaread.org")})
		if !errors.Is(err, store.ErrNoSource) {
			t.Errorf("Expected ErrNoSource, got %v", err)
		}
	})

	t.Run("missing manga", func(t *testing.T) {
		_, err := s.UpdateManga(ctx, 999, models.MangaUpdate{Name: strPtr("x")})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete cascades", func(t *testing.T) {
		if err := s.DeleteManga(ctx, m.ID); err != nil {
			t.Fatalf("DeleteManga failed: %v", err)
		}
		var count int
		db.QueryRow("SELECT COUNT(*) FROM chapter").Scan(&count)
		if count != 0 {
			t.Errorf("Expected history to be deleted, got %d rows", count)
		}
		if err := s.DeleteManga(ctx, m.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}
