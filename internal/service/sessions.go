package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/device"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/geo"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/ids"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/security"
)

// SessionService owns session records. Expiry always comes from the
// signed claim checked by policy; this service only tracks the store's
// view and enforces retention.
type SessionService struct {
	sessions   repository.SessionRepository
	resolver   geo.Resolver
	staleAfter time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, resolver geo.Resolver, staleAfter time.Duration, log zerolog.Logger) *SessionService {
	if resolver == nil {
		resolver = geo.NopResolver{}
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &SessionService{
		sessions:   sessions,
		resolver:   resolver,
		staleAfter: staleAfter,
		log:        log,
		now:        time.Now,
	}
}

// Create persists a session for an issued token. Device info is derived
// from the user agent; the location lookup is best-effort and an empty
// label is fine.
func (s *SessionService) Create(ctx context.Context, subjectID string, token string, ip string, userAgent string, expiresAt time.Time) (models.Session, error) {
	now := s.now()
	info := device.Parse(userAgent)

	session := models.Session{
		ID:           ids.New(),
		SubjectID:    subjectID,
		TokenHash:    security.HashToken(token),
		IPAddress:    ip,
		UserAgent:    userAgent,
		Browser:      info.Browser,
		OS:           info.OS,
		DeviceClass:  info.DeviceClass,
		Location:     s.resolver.Resolve(ctx, ip),
		LastActivity: now,
		ExpiresAt:    expiresAt,
		IsActive:     true,
		CreatedAt:    now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (s *SessionService) GetByToken(ctx context.Context, token string) (models.Session, error) {
	return s.sessions.GetByTokenHash(ctx, security.HashToken(token))
}

func (s *SessionService) GetByID(ctx context.Context, id string) (models.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// Touch records activity. Safe to call on every request; last-write-wins
// because lastActivity carries no ordering invariant.
func (s *SessionService) Touch(ctx context.Context, sessionID string) {
	if err := s.sessions.Touch(ctx, sessionID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("session touch failed")
	}
}

// Revoke deactivates one session. Revoking an already-inactive session
// is a no-op.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *SessionService) RevokeAllForSubject(ctx context.Context, subjectID string) (int, error) {
	return s.sessions.RevokeAllForSubject(ctx, subjectID)
}

func (s *SessionService) ListActive(ctx context.Context) ([]models.Session, error) {
	return s.sessions.ListActive(ctx, s.now())
}

func (s *SessionService) ListActiveForSubject(ctx context.Context, subjectID string) ([]models.Session, error) {
	return s.sessions.ListActiveForSubject(ctx, subjectID, s.now())
}

// Sweep deactivates sessions that are past expiry or stale for longer
// than the configured threshold. It runs from the scheduler, not from
// request traffic.
func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	swept, err := s.sessions.Sweep(ctx, now, now.Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.log.Info().Int("count", swept).Msg("session sweep deactivated sessions")
	}
	return swept, nil
}
