package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/apperr"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/security"
)

// SetupCache holds the pending (not yet confirmed) enrollment secret.
// Nothing in the pending stage counts as enabled.
type SetupCache interface {
	PutPending(ctx context.Context, subjectID string, secret string, ttl time.Duration) error
	GetPending(ctx context.Context, subjectID string) (string, error)
	DeletePending(ctx context.Context, subjectID string) error
}

// RateLimiter throttles verification attempts per subject.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

var (
	totpCodePattern   = regexp.MustCompile(`^\d{6}$`)
	backupCodePattern = regexp.MustCompile(`^[0-9a-f]{8}$`)
)

// TwoFactorService drives the per-subject Disabled -> PendingSetup ->
// Enabled state machine. Wrong TOTP and already-used backup codes fail
// with the same generic invalid-code error so a caller cannot tell
// which path was attempted.
type TwoFactorService struct {
	creds   repository.TwoFactorRepository
	pending SetupCache
	limiter RateLimiter
	events  *EventService
	cfg     config.TwoFactorConfig
	log     zerolog.Logger
	now     func() time.Time
}

func NewTwoFactorService(
	creds repository.TwoFactorRepository,
	pending SetupCache,
	limiter RateLimiter,
	events *EventService,
	cfg config.TwoFactorConfig,
	log zerolog.Logger,
) *TwoFactorService {
	if cfg.BackupCodeCount <= 0 {
		cfg.BackupCodeCount = 10
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 10 * time.Minute
	}
	return &TwoFactorService{
		creds:   creds,
		pending: pending,
		limiter: limiter,
		events:  events,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

type SetupPayload struct {
	Secret string
	// URL is the otpauth:// enrollment payload rendered as a QR code
	// by the dashboard.
	URL string
}

// BeginSetup mints a fresh pending secret. Calling it again before
// confirmation re-issues a new secret and invalidates the previous one.
func (s *TwoFactorService) BeginSetup(ctx context.Context, subjectID string, accountName string) (SetupPayload, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.Issuer,
		AccountName: accountName,
	})
	if err != nil {
		return SetupPayload{}, apperr.Wrap(apperr.Internal, "generate totp secret", err)
	}

	if err := s.pending.PutPending(ctx, subjectID, key.Secret(), s.cfg.PendingTTL); err != nil {
		return SetupPayload{}, apperr.Wrap(apperr.Internal, "store pending secret", err)
	}

	return SetupPayload{Secret: key.Secret(), URL: key.URL()}, nil
}

// ConfirmSetup validates the first code against the pending secret and,
// on success, persists the credential as enabled and returns the backup
// codes. The plaintext codes are returned exactly once; only hashes are
// stored.
func (s *TwoFactorService) ConfirmSetup(ctx context.Context, subjectID string, secret string, submittedCode string, ip string, userAgent string) ([]string, error) {
	pendingSecret, err := s.pending.GetPending(ctx, subjectID)
	if err != nil || pendingSecret == "" || pendingSecret != secret {
		return nil, apperr.New(apperr.Invalid, "no pending two-factor setup")
	}

	if !s.validateTOTP(submittedCode, secret) {
		s.events.TryRecord(ctx, RecordEventInput{
			EventType: models.EventTwoFactorFailed,
			Severity:  models.SeverityMedium,
			SubjectID: subjectID,
			IPAddress: ip,
			UserAgent: userAgent,
			Details:   map[string]any{"stage": "setup_confirmation"},
		})
		return nil, apperr.ErrInvalidCode
	}

	plaintext, hashed, err := s.mintBackupCodes()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "mint backup codes", err)
	}

	cred := models.TwoFactorCredential{
		SubjectID:   subjectID,
		Secret:      secret,
		Enabled:     true,
		BackupCodes: hashed,
		EnabledAt:   s.now(),
	}
	if err := s.creds.Save(ctx, cred); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "persist two-factor credential", err)
	}

	if err := s.pending.DeletePending(ctx, subjectID); err != nil {
		s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("clear pending 2fa secret failed")
	}

	s.events.TryRecord(ctx, RecordEventInput{
		EventType: models.EventTwoFactorEnabled,
		Severity:  models.SeverityLow,
		SubjectID: subjectID,
		IPAddress: ip,
		UserAgent: userAgent,
	})

	return plaintext, nil
}

// Verify accepts either a current TOTP code or an unused backup code.
// Attempts are rate-limited per subject; a consumed backup code cannot
// be replayed even under concurrent submission.
func (s *TwoFactorService) Verify(ctx context.Context, subjectID string, submittedCode string, ip string, userAgent string) error {
	allowed, err := s.limiter.Allow(ctx, "2fa:"+subjectID)
	if err != nil {
		// Limiter backend trouble should not lock everyone out.
		s.log.Warn().Err(err).Msg("2fa rate limiter unavailable")
		allowed = true
	}
	if !allowed {
		s.events.TryRecord(ctx, RecordEventInput{
			EventType: models.EventRateLimit,
			Severity:  models.SeverityMedium,
			SubjectID: subjectID,
			IPAddress: ip,
			UserAgent: userAgent,
			Details:   map[string]any{"operation": "2fa_verify"},
		})
		return apperr.ErrRateLimited
	}

	code := normalizeCode(submittedCode)
	isTOTP := totpCodePattern.MatchString(code)
	isBackup := backupCodePattern.MatchString(code)
	if !isTOTP && !isBackup {
		return apperr.New(apperr.Invalid, "malformed code")
	}

	cred, err := s.creds.Get(ctx, subjectID)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			return apperr.Wrap(apperr.Internal, "load two-factor credential", err)
		}
		return s.fail(ctx, subjectID, ip, userAgent)
	}
	if !cred.Enabled {
		return s.fail(ctx, subjectID, ip, userAgent)
	}

	if isTOTP && s.validateTOTP(code, cred.Secret) {
		return nil
	}

	if isBackup {
		consumed, err := s.creds.ConsumeBackupCode(ctx, subjectID, security.HashToken(code), s.now())
		if err != nil {
			return apperr.Wrap(apperr.Internal, "consume backup code", err)
		}
		if consumed {
			return nil
		}
	}

	return s.fail(ctx, subjectID, ip, userAgent)
}

func (s *TwoFactorService) fail(ctx context.Context, subjectID string, ip string, userAgent string) error {
	s.events.TryRecord(ctx, RecordEventInput{
		EventType: models.EventTwoFactorFailed,
		Severity:  models.SeverityMedium,
		SubjectID: subjectID,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return apperr.ErrInvalidCode
}

func (s *TwoFactorService) Enabled(ctx context.Context, subjectID string) (bool, error) {
	cred, err := s.creds.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return false, nil
		}
		return false, err
	}
	return cred.Enabled, nil
}

// validateTOTP checks the code at the current time step with a skew of
// one step either way for clock drift.
func (s *TwoFactorService) validateTOTP(code string, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func (s *TwoFactorService) mintBackupCodes() ([]string, []models.BackupCode, error) {
	plaintext := make([]string, 0, s.cfg.BackupCodeCount)
	hashed := make([]models.BackupCode, 0, s.cfg.BackupCodeCount)

	for i := 0; i < s.cfg.BackupCodeCount; i++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return nil, nil, err
		}
		raw := hex.EncodeToString(buf)

		// Displayed with a hyphen for readability; the hash is over
		// the normalized form so either spelling verifies.
		plaintext = append(plaintext, fmt.Sprintf("%s-%s", raw[:4], raw[4:]))
		hashed = append(hashed, models.BackupCode{CodeHash: security.HashToken(raw)})
	}
	return plaintext, hashed, nil
}

func normalizeCode(code string) string {
	code = strings.TrimSpace(strings.ToLower(code))
	code = strings.ReplaceAll(code, "-", "")
	return strings.ReplaceAll(code, " ", "")
}
