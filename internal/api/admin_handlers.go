package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/vrsandeep/manga-sync/internal/jobs"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

func (s *Server) handleRunAdminJob(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := s.app.JobManager().RunJob(payload.JobID)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + payload.JobID + "' started successfully.",
	})
}

func (s *Server) handleGetAdminJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":     s.app.JobManager().GetStatus(),
		"cron":     s.app.Scheduler().Expr(),
		"next_run": s.app.Scheduler().NextRun(),
	})
}

func (s *Server) handleGetKeyAge(w http.ResponseWriter, r *http.Request) {
	days, err := s.app.Keys().AgeInDays()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read key age")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]int{"age_in_days": days})
}

func (s *Server) handleRotateKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.app.Keys().Rotate()
	if err != nil {
		log.Printf("Failed to rotate API key: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to rotate key")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"key": key})
}
