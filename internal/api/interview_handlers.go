package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/storage"
	"github.com/terra-clan/interview-console/internal/wizard"
)

const maxResumeSize = 10 << 20

// StartInterviewRequest is the completed setup wizard
type StartInterviewRequest struct {
	wizard.Details
	DurationMinutes int `json:"durationMinutes"`
}

// userQuestions caches opening questions for one user, so they survive re-login
type userQuestions struct {
	repo  storage.Repository
	owner string
}

func (q userQuestions) SaveInitialQuestion(ctx context.Context, interviewID int64, question string) error {
	return q.repo.SaveInitialQuestion(ctx, q.owner, interviewID, question)
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	interviews, err := s.backendFor(sess, nil).GetInterviewHistory(r.Context())
	if err != nil {
		s.respondBackendError(w, r, err, "load interview history")
		return
	}
	if interviews == nil {
		interviews = []models.Interview{}
	}

	respondJSON(w, http.StatusOK, interviews)
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	id, ok := interviewIDParam(w, r)
	if !ok {
		return
	}

	interview, err := s.backendFor(sess, nil).GetInterview(r.Context(), id)
	if err != nil {
		s.respondBackendError(w, r, err, "load interview")
		return
	}
	if interview == nil {
		respondError(w, http.StatusNotFound, "not_found", "interview not found")
		return
	}

	respondJSON(w, http.StatusOK, interview)
}

// handleStartInterview replays the wizard steps server-side. The resume is
// uploaded separately, so the resume step is skipped here.
func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req StartInterviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wz := wizard.New(sess.PhoneNumber, s.backendFor(sess, nil), userQuestions{repo: s.deps.Repo, owner: sess.PhoneNumber})
	wz.SetDetails(req.Details)

	if err := wz.Next(); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", wizardMessage(wz, err))
		return
	}
	if err := wz.SkipResume(); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.DurationMinutes != 0 {
		if err := wz.SetDuration(req.DurationMinutes); err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
	}

	result, err := wz.Start(r.Context())
	if err != nil {
		if errors.Is(err, wizard.ErrStartFailed) {
			s.respondBackendError(w, r, err, "start interview")
			return
		}
		slog.Error("failed to start interview", "error", err, "session", sess.MaskedID())
		respondError(w, http.StatusInternalServerError, "internal_error", wizardMessage(wz, err))
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	if err := s.backendFor(sess, nil).UploadResume(r.Context(), sess.PhoneNumber, filepath.Base(header.Filename), file); err != nil {
		slog.Error("failed to upload resume", "error", err, "session", sess.MaskedID())
		s.respondBackendError(w, r, err, "upload resume")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "uploaded"})
}

func (s *Server) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	langs := s.deps.Catalog.Languages()
	if langs == nil {
		langs = []models.Language{}
	}
	respondJSON(w, http.StatusOK, langs)
}

// wizardMessage prefers the text the wizard shows on its page
func wizardMessage(wz *wizard.Wizard, err error) string {
	if msg := wz.Message(); msg != "" {
		return msg
	}
	return err.Error()
}
