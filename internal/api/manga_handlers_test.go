package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/testutil"
)

func TestMangaLifecycle(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	expectStatus(t, doRequest(t, router, "POST", "/api/website/mockread.local", "", ""), http.StatusCreated)

	rr := doRequest(t, router, "POST", "/api/manga",
		`{"name":" Solo Climb ","cover":"c.jpg","cover_small":"cs.jpg","source_path":"/series/10/","website_domain":"mockread.local"}`, "")
	expectStatus(t, rr, http.StatusCreated)
	var created models.Manga
	decode(t, rr, &created)
	if created.Name != "Solo Climb" {
		t.Errorf("Expected trimmed name, got %q", created.Name)
	}
	mangaURL := fmt.Sprintf("/api/manga/%d", created.ID)

	t.Run("record chapter refreshes unread count", func(t *testing.T) {
		rr := doRequest(t, router, "PATCH", mangaURL, `{"chapter_number":"chapter-7","website_domain":"mockread.local"}`, "")
		expectStatus(t, rr, http.StatusOK)
		var detail models.MangaDetail
		decode(t, rr, &detail)
		if detail.CurrentChapter == nil || *detail.CurrentChapter != "chapter-7" {
			t.Errorf("Expected current chapter 'chapter-7', got %v", detail.CurrentChapter)
		}
		if detail.NumberUnreadChapter == nil || *detail.NumberUnreadChapter != 3 {
			t.Errorf("Expected 3 unread chapters, got %v", detail.NumberUnreadChapter)
		}
		if detail.LastReadAt == nil {
			t.Error("Expected last_read_at to be set")
		}
	})

	t.Run("unknown chapter keeps the update", func(t *testing.T) {
		rr := doRequest(t, router, "PATCH", mangaURL, `{"chapter_number":"chapter-99","website_domain":"mockread.local"}`, "")
		expectStatus(t, rr, http.StatusOK)
		var detail models.MangaDetail
		decode(t, rr, &detail)
		if detail.CurrentChapter == nil || *detail.CurrentChapter != "chapter-99" {
			t.Errorf("Expected current chapter 'chapter-99', got %v", detail.CurrentChapter)
		}
		if detail.NumberUnreadChapter == nil || *detail.NumberUnreadChapter != 3 {
			t.Errorf("Expected the previous unread count to be kept, got %v", detail.NumberUnreadChapter)
		}
	})

	t.Run("history and sources", func(t *testing.T) {
		rr := doRequest(t, router, "GET", mangaURL+"/history", "", "")
		expectStatus(t, rr, http.StatusOK)
		var history []models.HistoryItem
		decode(t, rr, &history)
		if len(history) != 2 || history[0].Number != "chapter-99" {
			t.Errorf("Expected two history entries newest first, got %+v", history)
		}

		rr = doRequest(t, router, "GET", mangaURL+"/source", "", "")
		expectStatus(t, rr, http.StatusOK)
		var sources []models.Source
		decode(t, rr, &sources)
		if len(sources) != 1 || sources[0].Path != "/series/10" {
			t.Errorf("Expected one source with a normalized path, got %+v", sources)
		}
	})

	t.Run("list", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/manga?text=Solo&read_at=asc", "", "")
		expectStatus(t, rr, http.StatusOK)
		var items []models.MangaListItem
		decode(t, rr, &items)
		if len(items) != 1 || items[0].ID != created.ID {
			t.Errorf("Expected the created manga, got %+v", items)
		}

		expectStatus(t, doRequest(t, router, "GET", "/api/manga?read_at=sideways", "", ""), http.StatusBadRequest)
	})

	t.Run("refresh unread", func(t *testing.T) {
		rr := doRequest(t, router, "PATCH", mangaURL, `{"chapter_number":"chapter-9","website_domain":"mockread.local"}`, "")
		expectStatus(t, rr, http.StatusOK)

		rr = doRequest(t, router, "POST", "/api/manga/refresh-unread", "", "")
		expectStatus(t, rr, http.StatusOK)
		var summary models.SyncSummary
		decode(t, rr, &summary)
		if summary.Total != 1 || summary.Success != 1 || summary.Errors != 0 {
			t.Fatalf("Unexpected summary: %+v", summary)
		}
		if got := summary.Results[0].UnreadCount; got == nil || *got != 1 {
			t.Errorf("Expected 1 unread chapter, got %v", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		expectStatus(t, doRequest(t, router, "DELETE", mangaURL+"/source/mockread.local", "", ""), http.StatusNoContent)
		expectStatus(t, doRequest(t, router, "DELETE", mangaURL+"/source/mockread.local", "", ""), http.StatusNotFound)
		expectStatus(t, doRequest(t, router, "DELETE", mangaURL, "", ""), http.StatusNoContent)
		expectStatus(t, doRequest(t, router, "GET", mangaURL, "", ""), http.StatusNotFound)
		expectStatus(t, doRequest(t, router, "GET", mangaURL+"/history", "", ""), http.StatusNotFound)
	})
}

func TestMangaValidation(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	rr := doRequest(t, router, "POST", "/api/manga", `{"name":"Lonely"}`, "")
	expectStatus(t, rr, http.StatusCreated)
	var created models.Manga
	decode(t, rr, &created)
	mangaURL := fmt.Sprintf("/api/manga/%d", created.ID)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"create without name", "POST", "/api/manga", `{"cover":"x"}`, http.StatusBadRequest},
		{"create with path only", "POST", "/api/manga", `{"name":"x","source_path":"/x"}`, http.StatusBadRequest},
		{"create on unknown website", "POST", "/api/manga", `{"name":"x","source_path":"/x","website_domain":"nope.example"}`, http.StatusBadRequest},
		{"create with bad json", "POST", "/api/manga", `{`, http.StatusBadRequest},
		{"update without fields", "PATCH", mangaURL, `{}`, http.StatusBadRequest},
		{"update path without domain", "PATCH", mangaURL, `{"source_path":"/x"}`, http.StatusBadRequest},
		{"update on unknown website", "PATCH", mangaURL, `{"website_domain":"nope.example"}`, http.StatusBadRequest},
		{"update missing manga", "PATCH", "/api/manga/999", `{"name":"x"}`, http.StatusNotFound},
		{"invalid id", "GET", "/api/manga/abc", "", http.StatusBadRequest},
		{"delete missing manga", "DELETE", "/api/manga/999", "", http.StatusNotFound},
		{"sources of missing manga", "GET", "/api/manga/999/source", "", http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, doRequest(t, router, tc.method, tc.path, tc.body, ""), tc.want)
		})
	}
}

func TestRefreshSource(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	expectStatus(t, doRequest(t, router, "POST", "/api/website/mockread.local", "", ""), http.StatusCreated)

	create := func(path string) int64 {
		t.Helper()
		rr := doRequest(t, router, "POST", "/api/manga",
			fmt.Sprintf(`{"name":"M %s","source_path":%q,"website_domain":"mockread.local"}`, path, path), "")
		expectStatus(t, rr, http.StatusCreated)
		var m models.Manga
		decode(t, rr, &m)
		sources, err := server.Store().GetSourcesByManga(t.Context(), m.ID)
		if err != nil || len(sources) != 1 {
			t.Fatalf("Expected one source, got %d (%v)", len(sources), err)
		}
		return sources[0].ID
	}

	t.Run("never read counts every chapter", func(t *testing.T) {
		id := create("/series/4")
		rr := doRequest(t, router, "POST", fmt.Sprintf("/api/source/%d/refresh", id), "", "")
		expectStatus(t, rr, http.StatusOK)
		var result models.SyncResult
		decode(t, rr, &result)
		if result.UnreadCount == nil || *result.UnreadCount != 4 {
			t.Errorf("Expected 4 unread chapters, got %+v", result)
		}
	})

	t.Run("empty feed is a bad gateway", func(t *testing.T) {
		id := create("/series/0")
		rr := doRequest(t, router, "POST", fmt.Sprintf("/api/source/%d/refresh", id), "", "")
		expectStatus(t, rr, http.StatusBadGateway)
		var result models.SyncResult
		decode(t, rr, &result)
		if result.Error == "" {
			t.Error("Expected the failure to be reported")
		}
	})

	t.Run("missing source", func(t *testing.T) {
		expectStatus(t, doRequest(t, router, "POST", "/api/source/999/refresh", "", ""), http.StatusNotFound)
	})

	t.Run("list sources", func(t *testing.T) {
		rr := doRequest(t, router, "GET", "/api/source", "", "")
		expectStatus(t, rr, http.StatusOK)
		var sources []models.Source
		decode(t, rr, &sources)
		if len(sources) != 2 {
			t.Errorf("Expected 2 sources, got %d", len(sources))
		}
	})
}
