package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/apperr"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/policy"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/security"
)

// AuthService is the identity boundary of the core: it turns a verified
// credential into a session plus signed claims, and feeds the event log
// on both outcomes. The role claim picks the TTL; elevated roles get
// the short one.
type AuthService struct {
	users     repository.UserRepository
	sessions  *SessionService
	events    *EventService
	cfg       config.SecurityConfig
	lifetimes policy.Lifetimes
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionService,
	events *EventService,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		events:   events,
		cfg:      cfg,
		lifetimes: policy.Lifetimes{
			Elevated: cfg.AdminSessionTTL,
			Standard: cfg.UserSessionTTL,
		},
		log: log,
		now: time.Now,
	}
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	// Token is the opaque session token; Claims is its signed
	// companion embedding the expiry the policy layer validates.
	Token   string
	Claims  string
	Session models.Session
	User    models.User
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailedLogin(ctx, "", input)
			return LoginResult{}, apperr.New(apperr.Unauthorized, "invalid credentials")
		}
		return LoginResult{}, apperr.Wrap(apperr.Internal, "lookup user", err)
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		s.recordFailedLogin(ctx, user.ID, input)
		return LoginResult{}, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	if user.Status != models.UserStatusActive {
		return LoginResult{}, apperr.New(apperr.Forbidden, "account is not active")
	}

	now := s.now()
	expiresAt := now.Add(s.lifetimes.TTLFor(user.Role))

	token, _, err := security.GenerateSessionToken()
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "mint session token", err)
	}

	// Snapshot known locations before this session exists, to judge
	// whether this login comes from somewhere new.
	knownLocations := s.knownLocations(ctx, user.ID)

	session, err := s.sessions.Create(ctx, user.ID, token, input.IPAddress, input.UserAgent, expiresAt)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "create session", err)
	}

	claims, err := security.SignSessionClaims(s.cfg.JWTSecret, user.ID, session.ID, string(user.Role), expiresAt, now)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "sign session claims", err)
	}

	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("record login timestamp failed")
	}

	if authz.IsElevated(user.Role) {
		newLocation := session.Location != "" && !knownLocations[session.Location]
		s.events.TryRecord(ctx, RecordEventInput{
			EventType: models.EventAdminLogin,
			Severity:  models.SeverityLow,
			SubjectID: user.ID,
			IPAddress: input.IPAddress,
			UserAgent: input.UserAgent,
			Location:  session.Location,
			Details: map[string]any{
				"new_location": newLocation,
				"session_id":   session.ID,
			},
		})
	}

	return LoginResult{
		Token:   token,
		Claims:  claims,
		Session: session,
		User:    user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Revoke(ctx, sessionID)
	return err
}

func (s *AuthService) recordFailedLogin(ctx context.Context, subjectID string, input LoginInput) {
	s.events.TryRecord(ctx, RecordEventInput{
		EventType: models.EventFailedLogin,
		Severity:  models.SeverityMedium,
		SubjectID: subjectID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Details:   map[string]any{"email": input.Email},
	})
}

func (s *AuthService) knownLocations(ctx context.Context, subjectID string) map[string]bool {
	known := make(map[string]bool)
	sessions, err := s.sessions.ListActiveForSubject(ctx, subjectID)
	if err != nil {
		s.log.Warn().Err(err).Msg("list sessions for location check failed")
		return known
	}
	for _, session := range sessions {
		if session.Location != "" {
			known[session.Location] = true
		}
	}
	return known
}
