package api

import (
	"net/http"

	"github.com/terra-clan/interview-console/internal/models"
)

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backendFor(SessionFromContext(r.Context()), nil).GetAdminStats(r.Context())
	if err != nil {
		s.respondBackendError(w, r, err, "load stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.backendFor(SessionFromContext(r.Context()), nil).GetAllUsers(r.Context())
	if err != nil {
		s.respondBackendError(w, r, err, "load users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminInterviews(w http.ResponseWriter, r *http.Request) {
	interviews, err := s.backendFor(SessionFromContext(r.Context()), nil).GetAllInterviews(r.Context())
	if err != nil {
		s.respondBackendError(w, r, err, "load interviews")
		return
	}
	if interviews == nil {
		interviews = []models.Interview{}
	}
	respondJSON(w, http.StatusOK, interviews)
}
