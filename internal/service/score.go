package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

// Score weighting. The four sub-scores are each clamped to [0,25] and
// summed to a 0-100 total:
//
//   - two-factor adoption: 25 * enabledAdmins/totalAdmins, round half
//     up; 25 when there are no admins.
//   - failed logins: 25 * (1 - failed/total) over the trailing
//     loginWindow, round half up; 25 when there were no logins.
//   - suspicious activity: 25 - suspiciousPenalty per unresolved
//     high/critical event; five such events zero the sub-score.
//   - account security: 25 minus stalePenalty per still-active session
//     older than staleSessionAge and dormantPenalty per active admin
//     with no login inside loginWindow.
//
// Grades: A >= 90, B >= 70, C >= 50, else D.
const (
	loginWindow         = 24 * time.Hour
	staleSessionAge     = 7 * 24 * time.Hour
	suspiciousPenalty   = 5
	staleSessionPenalty = 2
	dormantAdminPenalty = 3
)

type ScoreService struct {
	sessions repository.SessionRepository
	events   repository.EventRepository
	users    repository.UserRepository
	creds    repository.TwoFactorRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewScoreService(
	sessions repository.SessionRepository,
	events repository.EventRepository,
	users repository.UserRepository,
	creds repository.TwoFactorRepository,
	log zerolog.Logger,
) *ScoreService {
	return &ScoreService{
		sessions: sessions,
		events:   events,
		users:    users,
		creds:    creds,
		log:      log,
		now:      time.Now,
	}
}

// ComputeScore derives the snapshot from aggregate counts only, so it
// stays bounded no matter how much history has accumulated. The result
// is read-only and tolerates slight staleness.
func (s *ScoreService) ComputeScore(ctx context.Context) (models.ScoreSnapshot, error) {
	now := s.now()
	windowStart := now.Add(-loginWindow)

	adoption, err := s.twoFactorSubScore(ctx)
	if err != nil {
		return models.ScoreSnapshot{}, err
	}

	failedLogins, err := s.failedLoginSubScore(ctx, windowStart)
	if err != nil {
		return models.ScoreSnapshot{}, err
	}

	unresolved, err := s.events.CountUnresolvedAtOrAbove(ctx, models.SeverityHigh)
	if err != nil {
		return models.ScoreSnapshot{}, err
	}
	suspicious := clampSubScore(25 - unresolved*suspiciousPenalty)

	account, err := s.accountSubScore(ctx, now, windowStart)
	if err != nil {
		return models.ScoreSnapshot{}, err
	}

	total := adoption + failedLogins + suspicious + account
	return models.ScoreSnapshot{
		Total:           total,
		Grade:           gradeFor(total),
		TwoFactor:       adoption,
		FailedLogins:    failedLogins,
		Suspicious:      suspicious,
		AccountSecurity: account,
		ComputedAt:      now,
	}, nil
}

func (s *ScoreService) twoFactorSubScore(ctx context.Context) (int, error) {
	adminIDs, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(adminIDs) == 0 {
		return 25, nil
	}

	enabled, err := s.creds.CountEnabled(ctx, adminIDs)
	if err != nil {
		return 0, err
	}
	return clampSubScore(roundHalfUp(25 * float64(enabled) / float64(len(adminIDs)))), nil
}

func (s *ScoreService) failedLoginSubScore(ctx context.Context, since time.Time) (int, error) {
	failed, err := s.events.CountByTypeSince(ctx, models.EventFailedLogin, since)
	if err != nil {
		return 0, err
	}
	succeeded, err := s.events.CountByTypeSince(ctx, models.EventAdminLogin, since)
	if err != nil {
		return 0, err
	}

	total := failed + succeeded
	if total == 0 {
		return 25, nil
	}
	ratio := 1 - float64(failed)/float64(total)
	if ratio < 0 {
		ratio = 0
	}
	return clampSubScore(roundHalfUp(25 * ratio)), nil
}

func (s *ScoreService) accountSubScore(ctx context.Context, now time.Time, windowStart time.Time) (int, error) {
	stale, err := s.sessions.CountActiveCreatedBefore(ctx, now, now.Add(-staleSessionAge))
	if err != nil {
		return 0, err
	}
	dormant, err := s.users.CountAdminsWithoutLoginSince(ctx, windowStart)
	if err != nil {
		return 0, err
	}
	return clampSubScore(25 - stale*staleSessionPenalty - dormant*dormantAdminPenalty), nil
}

func clampSubScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 25 {
		return 25
	}
	return v
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func gradeFor(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 70:
		return "B"
	case total >= 50:
		return "C"
	default:
		return "D"
	}
}
