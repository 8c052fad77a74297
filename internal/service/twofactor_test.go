package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/apperr"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/cache"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/memory"
)

func newTwoFactorFixture(t *testing.T) (*TwoFactorService, *memory.EventRepository, time.Time) {
	t.Helper()

	eventRepo := memory.NewEventRepository()
	events := NewEventService(eventRepo, nil, zerolog.Nop())

	cfg := config.TwoFactorConfig{
		Issuer:          "BeamX",
		BackupCodeCount: 10,
		PendingTTL:      10 * time.Minute,
		MaxAttempts:     5,
		AttemptWindow:   5 * time.Minute,
	}
	svc := NewTwoFactorService(
		memory.NewTwoFactorRepository(),
		cache.NewMemorySetupCache(),
		NewMemoryRateLimiter(cfg.MaxAttempts, cfg.AttemptWindow),
		events,
		cfg,
		zerolog.Nop(),
	)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	events.now = func() time.Time { return now }
	return svc, eventRepo, now
}

// enroll walks a subject through the full setup flow and returns the
// secret plus the one-time backup codes.
func enroll(t *testing.T, svc *TwoFactorService, subjectID string, now time.Time) (string, []string) {
	t.Helper()
	ctx := context.Background()

	payload, err := svc.BeginSetup(ctx, subjectID, subjectID+"@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, payload.Secret)
	require.Contains(t, payload.URL, "otpauth://")

	code, err := totp.GenerateCode(payload.Secret, now)
	require.NoError(t, err)

	backupCodes, err := svc.ConfirmSetup(ctx, subjectID, payload.Secret, code, "203.0.113.9", "test-agent")
	require.NoError(t, err)
	return payload.Secret, backupCodes
}

func TestSetupConfirmEnables(t *testing.T) {
	svc, eventRepo, now := newTwoFactorFixture(t)
	ctx := context.Background()

	_, backupCodes := enroll(t, svc, "user-1", now)

	require.Len(t, backupCodes, 10)
	format := regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}$`)
	for _, code := range backupCodes {
		assert.Regexp(t, format, code)
	}

	enabled, err := svc.Enabled(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, enabled)

	count, err := eventRepo.CountByTypeSince(ctx, models.EventTwoFactorEnabled, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfirmRejectsWrongCode(t *testing.T) {
	svc, eventRepo, now := newTwoFactorFixture(t)
	ctx := context.Background()

	payload, err := svc.BeginSetup(ctx, "user-1", "user-1@example.com")
	require.NoError(t, err)

	valid, err := totp.GenerateCode(payload.Secret, now)
	require.NoError(t, err)
	wrong := "000000"
	if wrong == valid {
		wrong = "000001"
	}

	_, err = svc.ConfirmSetup(ctx, "user-1", payload.Secret, wrong, "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidCode)

	enabled, err := svc.Enabled(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, enabled)

	count, err := eventRepo.CountByTypeSince(ctx, models.EventTwoFactorFailed, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfirmWithoutPendingSetup(t *testing.T) {
	svc, _, _ := newTwoFactorFixture(t)

	_, err := svc.ConfirmSetup(context.Background(), "user-1", "SOMESECRET", "123456", "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestVerifyAcceptsCurrentTOTP(t *testing.T) {
	svc, _, now := newTwoFactorFixture(t)
	secret, _ := enroll(t, svc, "user-1", now)

	code, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)
	assert.NoError(t, svc.Verify(context.Background(), "user-1", code, "", ""))
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	svc, _, now := newTwoFactorFixture(t)
	enroll(t, svc, "user-1", now)

	err := svc.Verify(context.Background(), "user-1", "not-a-code", "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestBackupCodeConsumedOnce(t *testing.T) {
	svc, _, now := newTwoFactorFixture(t)
	ctx := context.Background()
	_, backupCodes := enroll(t, svc, "user-1", now)

	// Display form with the hyphen verifies fine.
	require.NoError(t, svc.Verify(ctx, "user-1", backupCodes[0], "", ""))

	// Replay fails with the same generic error as a wrong TOTP code.
	err := svc.Verify(ctx, "user-1", backupCodes[0], "", "")
	assert.ErrorIs(t, err, apperr.ErrInvalidCode)
}

func TestBackupCodeConcurrentDoubleSubmission(t *testing.T) {
	svc, _, now := newTwoFactorFixture(t)
	ctx := context.Background()
	_, backupCodes := enroll(t, svc, "user-1", now)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Verify(ctx, "user-1", backupCodes[1], "", "")
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperr.ErrInvalidCode)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestVerifyRateLimited(t *testing.T) {
	svc, eventRepo, now := newTwoFactorFixture(t)
	ctx := context.Background()

	// No credential enrolled: every well-formed attempt fails
	// generically and burns an attempt.
	for i := 0; i < 5; i++ {
		err := svc.Verify(ctx, "user-1", "111111", "", "")
		assert.ErrorIs(t, err, apperr.ErrInvalidCode)
	}

	err := svc.Verify(ctx, "user-1", "111111", "", "")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)

	count, err := eventRepo.CountByTypeSince(ctx, models.EventRateLimit, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReEnrollReplacesPendingSecret(t *testing.T) {
	svc, _, now := newTwoFactorFixture(t)
	ctx := context.Background()

	first, err := svc.BeginSetup(ctx, "user-1", "user-1@example.com")
	require.NoError(t, err)
	second, err := svc.BeginSetup(ctx, "user-1", "user-1@example.com")
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	// The superseded secret no longer confirms.
	code, err := totp.GenerateCode(first.Secret, now)
	require.NoError(t, err)
	_, err = svc.ConfirmSetup(ctx, "user-1", first.Secret, code, "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}
