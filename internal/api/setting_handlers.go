package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/manga-sync/internal/jobs"
	"github.com/vrsandeep/manga-sync/internal/store"
)

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.ListSettings(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve settings")
		return
	}
	RespondWithJSON(w, http.StatusOK, settings)
}

// handleUpdateSetting stores the raw request body as the setting's value.
// A new sync_cron takes effect immediately.
func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	value := strings.TrimSpace(string(body))

	if key == store.SettingSyncCron {
		if err := jobs.ValidateCron(value); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid cron expression: "+err.Error())
			return
		}
	}

	err = s.store.UpdateSetting(r.Context(), key, value)
	if errors.Is(err, store.ErrNotFound) {
		RespondWithError(w, http.StatusNotFound, "Setting '"+key+"' not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to update setting")
		return
	}

	if key == store.SettingSyncCron {
		if err := s.app.Scheduler().Schedule(value); err != nil {
			log.Printf("Failed to reschedule sync job: %v", err)
		}
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{key: value})
}
