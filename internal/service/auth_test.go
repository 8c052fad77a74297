package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/apperr"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/memory"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/security"
)

type authFixture struct {
	svc      *AuthService
	sessions *SessionService
	events   *memory.EventRepository
	users    *memory.UserRepository
	now      time.Time
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	f := authFixture{
		events: memory.NewEventRepository(),
		users:  memory.NewUserRepository(),
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	eventService := NewEventService(f.events, nil, zerolog.Nop())
	eventService.now = func() time.Time { return f.now }

	f.sessions = NewSessionService(memory.NewSessionRepository(), nil, 24*time.Hour, zerolog.Nop())
	f.sessions.now = func() time.Time { return f.now }

	cfg := config.SecurityConfig{
		JWTSecret:       "test-secret-test-secret-test-secret!",
		AdminSessionTTL: 30 * time.Minute,
		UserSessionTTL:  7 * 24 * time.Hour,
	}
	f.svc = NewAuthService(f.users, f.sessions, eventService, cfg, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f authFixture) addUser(t *testing.T, id string, email string, password string, role authz.Role, status models.UserStatus) {
	t.Helper()
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), models.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}))
}

func TestLoginIssuesSessionAndClaims(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "user-1", "jo@example.com", "hunter2-hunter2", authz.RoleUser, models.UserStatusActive)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "  JO@example.com ",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-1", result.Session.SubjectID)
	assert.Equal(t, f.now.Add(7*24*time.Hour), result.Session.ExpiresAt)

	claims, err := security.ParseSessionClaims(result.Claims, "test-secret-test-secret-test-secret!")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, result.Session.ID, claims.SessionID)

	// The opaque token resolves to the same session.
	session, err := f.sessions.GetByToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, session.ID)
}

func TestAdminLoginGetsShortTTLAndEvent(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "admin-1", "root@example.com", "hunter2-hunter2", authz.RoleAdmin, models.UserStatusActive)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "root@example.com",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(30*time.Minute), result.Session.ExpiresAt)

	count, err := f.events.CountByTypeSince(context.Background(), models.EventAdminLogin, f.now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoginHonorsConfiguredTTLs(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "admin-1", "root@example.com", "hunter2-hunter2", authz.RoleAdmin, models.UserStatusActive)

	// Operator shortened the admin window to 15 minutes.
	cfg := config.SecurityConfig{
		JWTSecret:       "test-secret-test-secret-test-secret!",
		AdminSessionTTL: 15 * time.Minute,
		UserSessionTTL:  48 * time.Hour,
	}
	events := NewEventService(f.events, nil, zerolog.Nop())
	svc := NewAuthService(f.users, f.sessions, events, cfg, zerolog.Nop())
	svc.now = func() time.Time { return f.now }

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "root@example.com",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(15*time.Minute), result.Session.ExpiresAt)
}

func TestLoginWrongPasswordRecordsFailedLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "user-1", "jo@example.com", "hunter2-hunter2", authz.RoleUser, models.UserStatusActive)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "jo@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	count, err := f.events.CountByTypeSince(context.Background(), models.EventFailedLogin, f.now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoginUnknownEmailIsIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginSuspendedAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "user-1", "jo@example.com", "hunter2-hunter2", authz.RoleUser, models.UserStatusSuspended)

	_, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "jo@example.com",
		Password: "hunter2-hunter2",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "user-1", "jo@example.com", "hunter2-hunter2", authz.RoleUser, models.UserStatusActive)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "jo@example.com",
		Password: "hunter2-hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), result.Session.ID))

	session, err := f.sessions.GetByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.False(t, session.IsActive)
}
