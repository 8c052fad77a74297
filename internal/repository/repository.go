// Package repository declares the storage interfaces for the security
// core. The postgres subpackage is the production implementation; the
// memory subpackage backs service tests with the same conditional
// semantics (revoke-if-active, consume-once backup codes).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCredentialNotFound   = errors.New("two-factor credential not found")
)

// EventFilter narrows event queries. Zero values mean "no constraint".
type EventFilter struct {
	EventType models.EventType
	SubjectID string
	Start     *time.Time
	End       *time.Time
	Search    string
}

type AuditFilter struct {
	Action  string
	ActorID string
	Start   *time.Time
	End     *time.Time
	Search  string
}

type SessionRepository interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, error)

	// Touch updates lastActivity only. Last-write-wins is fine:
	// lastActivity is advisory telemetry with no ordering invariant.
	Touch(ctx context.Context, id string, at time.Time) error

	// Revoke flips isActive to false if it is still true; it reports
	// whether this call did the flip. Revoking an inactive session is
	// a no-op, not an error.
	Revoke(ctx context.Context, id string) (bool, error)
	RevokeAllForSubject(ctx context.Context, subjectID string) (int, error)

	ListActive(ctx context.Context, now time.Time) ([]models.Session, error)
	ListActiveForSubject(ctx context.Context, subjectID string, now time.Time) ([]models.Session, error)

	// Sweep deactivates sessions whose expiry has passed or whose
	// lastActivity is older than staleBefore. The update is
	// conditional on isActive so it cannot race a concurrent revoke.
	Sweep(ctx context.Context, now time.Time, staleBefore time.Time) (int, error)

	// CountActiveCreatedBefore counts still-active sessions created
	// before cutoff; feeds the account-security sub-score.
	CountActiveCreatedBefore(ctx context.Context, now time.Time, cutoff time.Time) (int, error)
}

type EventRepository interface {
	Insert(ctx context.Context, event models.SecurityEvent) error
	GetByID(ctx context.Context, id string) (models.SecurityEvent, error)

	// MarkResolved is conditional on resolved=false and returns the
	// stored row either way, so resolving twice is idempotent.
	MarkResolved(ctx context.Context, id string, resolvedBy string, at time.Time) (models.SecurityEvent, error)

	// Query returns a page ordered most-recent-first plus the total
	// match count.
	Query(ctx context.Context, filter EventFilter, page int, limit int) ([]models.SecurityEvent, int, error)

	CountByTypeSince(ctx context.Context, eventType models.EventType, since time.Time) (int, error)
	CountUnresolvedAtOrAbove(ctx context.Context, min models.Severity) (int, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, action models.AdminAction) error
	Query(ctx context.Context, filter AuditFilter, page int, limit int) ([]models.AdminAction, int, error)

	// ListAll returns every matching record oldest-first, for export.
	ListAll(ctx context.Context, filter AuditFilter) ([]models.AdminAction, error)
}

type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error

	ListAdminIDs(ctx context.Context) ([]string, error)
	CountAdminsWithoutLoginSince(ctx context.Context, since time.Time) (int, error)
}

type TwoFactorRepository interface {
	Get(ctx context.Context, subjectID string) (models.TwoFactorCredential, error)

	// Save persists a confirmed credential (secret, enabled flag and
	// freshly minted backup codes) in one shot.
	Save(ctx context.Context, cred models.TwoFactorCredential) error
	Disable(ctx context.Context, subjectID string) error

	// ConsumeBackupCode marks the matching unused code as used and
	// reports whether this call consumed it. At most one concurrent
	// caller can win (compare-and-set on the used flag).
	ConsumeBackupCode(ctx context.Context, subjectID string, codeHash []byte, at time.Time) (bool, error)

	CountEnabled(ctx context.Context, subjectIDs []string) (int, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, n models.Notification) error
	GetByID(ctx context.Context, id string) (models.Notification, error)
	ListForSubject(ctx context.Context, subjectID string, page int, limit int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id string, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, subjectID string, at time.Time) (int, error)
	Delete(ctx context.Context, id string) (bool, error)

	// CountUnread derives the unread count; it is never stored.
	CountUnread(ctx context.Context, subjectID string) (int, error)
}
