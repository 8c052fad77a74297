package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/memory"
)

type scoreFixture struct {
	svc      *ScoreService
	sessions *memory.SessionRepository
	events   *memory.EventRepository
	users    *memory.UserRepository
	creds    *memory.TwoFactorRepository
	now      time.Time
}

func newScoreFixture(t *testing.T) scoreFixture {
	t.Helper()
	f := scoreFixture{
		sessions: memory.NewSessionRepository(),
		events:   memory.NewEventRepository(),
		users:    memory.NewUserRepository(),
		creds:    memory.NewTwoFactorRepository(),
		now:      time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewScoreService(f.sessions, f.events, f.users, f.creds, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f scoreFixture) addAdmin(t *testing.T, id string, lastLogin *time.Time, twoFactor bool) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), models.User{
		ID:          id,
		Email:       id + "@example.com",
		Role:        authz.RoleAdmin,
		Status:      models.UserStatusActive,
		LastLoginAt: lastLogin,
	}))
	if twoFactor {
		require.NoError(t, f.creds.Save(context.Background(), models.TwoFactorCredential{
			SubjectID: id,
			Secret:    "SECRET",
			Enabled:   true,
		}))
	}
}

func TestScoreEmptySystemIsPerfect(t *testing.T) {
	f := newScoreFixture(t)

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, snapshot.Total)
	assert.Equal(t, "A", snapshot.Grade)
	assert.Equal(t, 25, snapshot.TwoFactor)
	assert.Equal(t, 25, snapshot.FailedLogins)
	assert.Equal(t, 25, snapshot.Suspicious)
	assert.Equal(t, 25, snapshot.AccountSecurity)
	assert.Equal(t, f.now, snapshot.ComputedAt)
}

func TestTwoFactorAdoptionRoundsHalfUp(t *testing.T) {
	f := newScoreFixture(t)
	recent := f.now.Add(-time.Hour)

	// 2 of 4 admins enrolled: 12.5 rounds up to 13.
	f.addAdmin(t, "admin-1", &recent, true)
	f.addAdmin(t, "admin-2", &recent, true)
	f.addAdmin(t, "admin-3", &recent, false)
	f.addAdmin(t, "admin-4", &recent, false)

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13, snapshot.TwoFactor)
}

func TestFailedLoginRatio(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	// 1 failed out of 4 attempts in the window: 25 * 0.75 = 18.75 -> 19.
	insert := func(eventType models.EventType, at time.Time) {
		require.NoError(t, f.events.Insert(ctx, models.SecurityEvent{
			ID:        string(eventType) + at.String(),
			EventType: eventType,
			Severity:  models.SeverityLow,
			CreatedAt: at,
		}))
	}
	insert(models.EventFailedLogin, f.now.Add(-time.Hour))
	insert(models.EventAdminLogin, f.now.Add(-2*time.Hour))
	insert(models.EventAdminLogin, f.now.Add(-3*time.Hour))
	insert(models.EventAdminLogin, f.now.Add(-4*time.Hour))

	// Outside the 24h window, ignored.
	insert(models.EventFailedLogin, f.now.Add(-25*time.Hour))

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, snapshot.FailedLogins)
}

func TestSuspiciousSubScoreBottomsOut(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	// Six unresolved high events would go negative; clamp holds at 0.
	for i := 0; i < 6; i++ {
		require.NoError(t, f.events.Insert(ctx, models.SecurityEvent{
			ID:        string(rune('a' + i)),
			EventType: models.EventSuspiciousActivity,
			Severity:  models.SeverityHigh,
			CreatedAt: f.now.Add(-time.Hour),
		}))
	}

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Suspicious)
}

func TestResolvedEventsDoNotPenalize(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()

	resolvedAt := f.now.Add(-time.Minute)
	require.NoError(t, f.events.Insert(ctx, models.SecurityEvent{
		ID:         "resolved-1",
		EventType:  models.EventSuspiciousActivity,
		Severity:   models.SeverityCritical,
		CreatedAt:  f.now.Add(-time.Hour),
		Resolved:   true,
		ResolvedBy: "admin-1",
		ResolvedAt: &resolvedAt,
	}))

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, snapshot.Suspicious)
}

func TestAccountSubScorePenalties(t *testing.T) {
	f := newScoreFixture(t)
	ctx := context.Background()
	recent := f.now.Add(-time.Hour)

	// One dormant admin (-3), one current.
	f.addAdmin(t, "admin-1", nil, true)
	f.addAdmin(t, "admin-2", &recent, true)

	// Two stale active sessions (-2 each).
	for _, id := range []string{"s1", "s2"} {
		require.NoError(t, f.sessions.Create(ctx, models.Session{
			ID:           id,
			SubjectID:    "admin-2",
			LastActivity: recent,
			ExpiresAt:    f.now.Add(time.Hour),
			CreatedAt:    f.now.Add(-8 * 24 * time.Hour),
		}))
	}

	snapshot, err := f.svc.ComputeScore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25-2*2-3, snapshot.AccountSecurity)
}

func TestGradeBands(t *testing.T) {
	assert.Equal(t, "A", gradeFor(100))
	assert.Equal(t, "A", gradeFor(90))
	assert.Equal(t, "B", gradeFor(89))
	assert.Equal(t, "B", gradeFor(70))
	assert.Equal(t, "C", gradeFor(69))
	assert.Equal(t, "C", gradeFor(50))
	assert.Equal(t, "D", gradeFor(49))
	assert.Equal(t, "D", gradeFor(0))
}
