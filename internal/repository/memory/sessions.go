// Package memory holds in-memory repository implementations. They back
// service tests and mirror the postgres conditional-update semantics:
// revoke and sweep mutate only still-active rows, backup codes consume
// exactly once.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]models.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.IsActive = true
	r.sessions[session.ID] = session
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id string) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash []byte) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if bytes.Equal(session.TokenHash, tokenHash) {
			return session, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (r *SessionRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || !session.IsActive {
		return nil
	}
	session.LastActivity = at
	r.sessions[id] = session
	return nil
}

func (r *SessionRepository) Revoke(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	r.sessions[id] = session
	return true, nil
}

func (r *SessionRepository) RevokeAllForSubject(_ context.Context, subjectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, session := range r.sessions {
		if session.SubjectID == subjectID && session.IsActive {
			session.IsActive = false
			r.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (r *SessionRepository) ListActive(_ context.Context, now time.Time) ([]models.Session, error) {
	return r.listWhere(func(s models.Session) bool {
		return s.IsActive && s.ExpiresAt.After(now)
	}), nil
}

func (r *SessionRepository) ListActiveForSubject(_ context.Context, subjectID string, now time.Time) ([]models.Session, error) {
	return r.listWhere(func(s models.Session) bool {
		return s.SubjectID == subjectID && s.IsActive && s.ExpiresAt.After(now)
	}), nil
}

func (r *SessionRepository) listWhere(match func(models.Session) bool) []models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, session := range r.sessions {
		if match(session) {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

func (r *SessionRepository) Sweep(_ context.Context, now time.Time, staleBefore time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, session := range r.sessions {
		if !session.IsActive {
			continue
		}
		if !session.ExpiresAt.After(now) || session.LastActivity.Before(staleBefore) {
			session.IsActive = false
			r.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (r *SessionRepository) CountActiveCreatedBefore(_ context.Context, now time.Time, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.IsActive && session.ExpiresAt.After(now) && session.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}
