package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vrsandeep/manga-sync/internal/store"
)

func TestWebsiteStore(t *testing.T) {
	_, s := setupStore(t)
	ctx := context.Background()

	mustWebsite(t, s, "mangabuddy.com")
	mustWebsite(t, s, "www.mangaread.org")

	if _, err := s.CreateWebsite(ctx, "mangabuddy.com"); !errors.Is(err, store.ErrWebsiteExists) {
		t.Errorf("Expected ErrWebsiteExists, got %v", err)
	}

	websites, err := s.ListWebsites(ctx)
	if err != nil {
		t.Fatalf("ListWebsites failed: %v", err)
	}
	if len(websites) != 2 || websites[0].Domain != "mangabuddy.com" {
		t.Errorf("Expected 2 websites ordered by domain, got %+v", websites)
	}

	if _, err := s.GetWebsiteByDomain(ctx, "nope.example"); !errors.Is(err, store.ErrUnknownWebsite) {
		t.Errorf("Expected ErrUnknownWebsite, got %v", err)
	}

	m := mustManga(t, s, "Hosted", "mangabuddy.com", "/hosted")
	if err := s.DeleteWebsite(ctx, "mangabuddy.com"); err != nil {
		t.Fatalf("DeleteWebsite failed: %v", err)
	}
	sources, _ := s.GetSourcesByManga(ctx, m.ID)
	if len(sources) != 0 {
		t.Errorf("Expected sources to be removed with their website, got %d", len(sources))
	}
	if err := s.DeleteWebsite(ctx, "mangabuddy.com"); !errors.Is(err, store.ErrUnknownWebsite) {
		t.Errorf("Expected ErrUnknownWebsite on second delete, got %v", err)
	}
}

func TestSettingStore(t *testing.T) {
	_, s := setupStore(t)
	ctx := context.Background()

	value, err := s.GetSetting(ctx, store.SettingSyncCron)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "0 0 0 * * *" {
		t.Errorf("Expected seeded cron, got %q", value)
	}

	if err := s.UpdateSetting(ctx, store.SettingSyncCron, "0 30 6 * * *"); err != nil {
		t.Fatalf("UpdateSetting failed: %v", err)
	}
	settings, err := s.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings failed: %v", err)
	}
	if settings[store.SettingSyncCron] != "0 30 6 * * *" {
		t.Errorf("Expected updated cron, got %q", settings[store.SettingSyncCron])
	}

	if err := s.UpdateSetting(ctx, "unknown", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown key, got %v", err)
	}
	if _, err := s.GetSetting(ctx, "unknown"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound from GetSetting, got %v", err)
	}
}
