package api

import (
	"errors"
	"net/http"

	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/store"
)

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve sources")
		return
	}
	if sources == nil {
		sources = []*models.Source{}
	}
	RespondWithJSON(w, http.StatusOK, sources)
}

// handleRefreshSource re-counts the unread chapters of one source. A source
// whose feed could not be obtained at all is a 502; any other failure is
// reported in the returned result.
func (s *Server) handleRefreshSource(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "sourceID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid source ID")
		return
	}
	result, err := s.app.Syncer().RefreshSource(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "Source not found")
		return
	case err != nil:
		RespondWithJSON(w, http.StatusBadGateway, result)
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}
