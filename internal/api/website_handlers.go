package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vrsandeep/manga-sync/internal/models"
	"github.com/vrsandeep/manga-sync/internal/store"
)

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := s.store.ListWebsites(r.Context())
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve websites")
		return
	}
	if websites == nil {
		websites = []*models.Website{}
	}
	RespondWithJSON(w, http.StatusOK, websites)
}

// handleCheckWebsite tells whether a domain is stored and whether a
// provider exists for it.
func (s *Server) handleCheckWebsite(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	_, err := s.store.GetWebsiteByDomain(r.Context(), domain)
	if err != nil && !errors.Is(err, store.ErrUnknownWebsite) {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve website")
		return
	}
	_, supported := s.app.Registry().Get(domain)
	RespondWithJSON(w, http.StatusOK, map[string]bool{
		"existing":  err == nil,
		"supported": supported,
	})
}

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(chi.URLParam(r, "domain"))
	if domain == "" {
		RespondWithError(w, http.StatusBadRequest, "Domain is required")
		return
	}
	website, err := s.store.CreateWebsite(r.Context(), domain)
	if errors.Is(err, store.ErrWebsiteExists) {
		RespondWithError(w, http.StatusBadRequest, "Website already exists")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create website")
		return
	}
	if _, ok := s.app.Registry().Get(domain); !ok {
		log.Printf("Website %s was added but no provider supports it; its sources will not be synced", domain)
	}
	RespondWithJSON(w, http.StatusCreated, website)
}

func (s *Server) handleDeleteWebsite(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteWebsite(r.Context(), chi.URLParam(r, "domain"))
	if errors.Is(err, store.ErrUnknownWebsite) {
		RespondWithError(w, http.StatusNotFound, "Website not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete website")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Registry().SupportedDomains())
}
