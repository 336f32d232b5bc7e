// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vrsandeep/manga-sync/internal/core"
	"github.com/vrsandeep/manga-sync/internal/metrics"
	"github.com/vrsandeep/manga-sync/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	store *store.Store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		store: app.Store(),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/version", s.handleGetVersion)
	r.Handle("/metrics", metrics.Handler(s.app.Gatherer()))

	r.Group(func(r chi.Router) {
		if keys := s.app.Keys(); keys != nil {
			r.Use(keys.Middleware)
			r.Get("/api/key", s.handleGetKeyAge)
			r.Post("/api/key", s.handleRotateKey)
		}

		r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
			s.app.WsHub().ServeWs(w, r)
		})

		// Full passes walk every source and can outlast the request timeout.
		r.Post("/api/manga/refresh-unread", s.handleRefreshUnread)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/api/manga", s.handleListManga)
			r.Post("/api/manga", s.handleCreateManga)
			r.Get("/api/manga/{mangaID}", s.handleGetManga)
			r.Patch("/api/manga/{mangaID}", s.handleUpdateManga)
			r.Delete("/api/manga/{mangaID}", s.handleDeleteManga)
			r.Get("/api/manga/{mangaID}/source", s.handleListMangaSources)
			r.Delete("/api/manga/{mangaID}/source/{domain}", s.handleDeleteMangaSource)
			r.Get("/api/manga/{mangaID}/history", s.handleGetMangaHistory)

			r.Get("/api/source", s.handleListSources)
			r.Post("/api/source/{sourceID}/refresh", s.handleRefreshSource)

			r.Get("/api/website", s.handleListWebsites)
			r.Get("/api/website/{domain}", s.handleCheckWebsite)
			r.Post("/api/website/{domain}", s.handleCreateWebsite)
			r.Delete("/api/website/{domain}", s.handleDeleteWebsite)
			r.Get("/api/domains", s.handleListDomains)

			r.Get("/api/setting", s.handleListSettings)
			r.Patch("/api/setting/{key}", s.handleUpdateSetting)
			r.Post("/api/setting/{key}", s.handleUpdateSetting)

			r.Get("/api/admin/jobs/status", s.handleGetAdminJobsStatus)
			r.Post("/api/admin/jobs/run", s.handleRunAdminJob)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DB().PingContext(r.Context()); err != nil {
		RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
