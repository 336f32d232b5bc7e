package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/store"
)

// getMangaFilter extracts the listing query params.
func getMangaFilter(r *http.Request) (models.MangaFilter, error) {
	q := r.URL.Query()
	f := models.MangaFilter{
		Text:    q.Get("text"),
		Website: q.Get("website"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Size, _ = strconv.Atoi(q.Get("size"))

	switch strings.ToUpper(q.Get("read_at")) {
	case "", "DESC":
	case "ASC":
		f.ReadAtAsc = true
	default:
		return f, errors.New("invalid read_at value, expected ASC or DESC")
	}
	return f, nil
}

func urlID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	return id, err == nil
}

func (s *Server) handleListManga(w http.ResponseWriter, r *http.Request) {
	filter, err := getMangaFilter(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.store.ListManga(r.Context(), filter)
	if err != nil {
		log.Printf("Failed to list manga: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve manga")
		return
	}
	if items == nil {
		items = []*models.MangaListItem{}
	}
	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateManga(w http.ResponseWriter, r *http.Request) {
	var payload models.NewManga
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := payload.Validate(); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	manga, err := s.store.CreateManga(r.Context(), payload)
	if errors.Is(err, store.ErrUnknownWebsite) {
		RespondWithError(w, http.StatusBadRequest, "Website domain does not exist")
		return
	}
	if err != nil {
		log.Printf("Failed to create manga: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to create manga")
		return
	}
	RespondWithJSON(w, http.StatusCreated, manga)
}

func (s *Server) handleGetManga(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	manga, err := s.store.GetManga(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve manga")
		return
	}
	RespondWithJSON(w, http.StatusOK, manga)
}

// handleUpdateManga applies a partial update. When it records a chapter
// against a source, that source's unread count is refreshed before the
// response; a failed refresh leaves the update in place.
func (s *Server) handleUpdateManga(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	var payload models.MangaUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := payload.Validate(); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sourceID, err := s.store.UpdateManga(r.Context(), id, payload)
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	case errors.Is(err, store.ErrUnknownWebsite):
		RespondWithError(w, http.StatusBadRequest, "Website domain does not exist")
		return
	case errors.Is(err, store.ErrNoSource):
		RespondWithError(w, http.StatusBadRequest, "No source exists for this manga and domain")
		return
	case err != nil:
		log.Printf("Failed to update manga %d: %v", id, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to update manga")
		return
	}

	if sourceID != nil && payload.ChapterNumber != nil {
		result, err := s.app.Syncer().RefreshSource(r.Context(), *sourceID)
		if err != nil {
			log.Printf("Unread refresh for source %d failed: %v", *sourceID, err)
		} else if !result.OK() {
			log.Printf("Unread refresh for source %d failed: %s", *sourceID, result.Error)
		}
	}

	manga, err := s.store.GetManga(r.Context(), id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve manga")
		return
	}
	RespondWithJSON(w, http.StatusOK, manga)
}

func (s *Server) handleDeleteManga(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	err := s.store.DeleteManga(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete manga")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMangaSources(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	if _, err := s.store.GetManga(r.Context(), id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}
	sources, err := s.store.GetSourcesByManga(r.Context(), id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve sources")
		return
	}
	if sources == nil {
		sources = []*models.Source{}
	}
	RespondWithJSON(w, http.StatusOK, sources)
}

func (s *Server) handleDeleteMangaSource(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	err := s.store.DeleteMangaSource(r.Context(), id, chi.URLParam(r, "domain"))
	switch {
	case errors.Is(err, store.ErrUnknownWebsite):
		RespondWithError(w, http.StatusNotFound, "Website domain not found")
		return
	case errors.Is(err, store.ErrNoSource):
		RespondWithError(w, http.StatusNotFound, "Source not found for this manga")
		return
	case err != nil:
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete source")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMangaHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "mangaID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga ID")
		return
	}
	if _, err := s.store.GetManga(r.Context(), id); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}
	history, err := s.store.History(r.Context(), id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	if history == nil {
		history = []*models.HistoryItem{}
	}
	RespondWithJSON(w, http.StatusOK, history)
}

// handleRefreshUnread runs a full pass synchronously. Per-source failures
// are part of the summary, so the status is always 200.
func (s *Server) handleRefreshUnread(w http.ResponseWriter, r *http.Request) {
	summary := s.app.Syncer().SyncAll(r.Context())
	RespondWithJSON(w, http.StatusOK, summary)
}
