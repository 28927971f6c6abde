package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
)

type questionKey struct {
	owner       string
	interviewID int64
}

type cachedQuestion struct {
	text    string
	savedAt time.Time
}

// MemoryRepository keeps everything in process memory; for single-instance and test use
type MemoryRepository struct {
	mu        sync.RWMutex
	sessions  map[string]models.WebSession
	questions map[questionKey]cachedQuestion
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions:  make(map[string]models.WebSession),
		questions: make(map[questionKey]cachedQuestion),
	}
}

func (r *MemoryRepository) CreateSession(ctx context.Context, s *models.WebSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.MaskedID())
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemoryRepository) GetSession(ctx context.Context, id string) (*models.WebSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) UpdateSession(ctx context.Context, s *models.WebSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s not found", s.MaskedID())
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemoryRepository) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemoryRepository) DeleteExpiredSessions(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	deleted := 0
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
			deleted++
		}
	}
	for k, q := range r.questions {
		if now.Sub(q.savedAt) > QuestionRetention {
			delete(r.questions, k)
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) SaveInitialQuestion(ctx context.Context, owner string, interviewID int64, question string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[questionKey{owner, interviewID}] = cachedQuestion{text: question, savedAt: time.Now()}
	return nil
}

func (r *MemoryRepository) GetInitialQuestion(ctx context.Context, owner string, interviewID int64) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[questionKey{owner, interviewID}]
	if !ok || time.Since(q.savedAt) > QuestionRetention {
		return "", false, nil
	}
	return q.text, true, nil
}

func (r *MemoryRepository) DeleteInitialQuestion(ctx context.Context, owner string, interviewID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.questions, questionKey{owner, interviewID})
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
