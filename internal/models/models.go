package models

import (
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// User carries only the fields this core needs for role and status
// checks. Profile CRUD lives elsewhere.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         authz.Role
	Status       UserStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// Session is one authenticated device. ExpiresAt is the sole authority
// for expiry; LastActivity is advisory telemetry. IsActive only ever
// transitions true -> false.
type Session struct {
	ID           string
	SubjectID    string
	TokenHash    []byte
	IPAddress    string
	UserAgent    string
	Browser      string
	OS           string
	DeviceClass  string
	Location     string
	LastActivity time.Time
	ExpiresAt    time.Time
	IsActive     bool
	CreatedAt    time.Time
}

type EventType string

const (
	EventFailedLogin        EventType = "failed_login"
	EventAdminLogin         EventType = "admin_login"
	EventSuspiciousActivity EventType = "suspicious_activity"
	EventTwoFactorEnabled   EventType = "2fa_enabled"
	EventTwoFactorFailed    EventType = "2fa_failed"
	EventRateLimit          EventType = "rate_limit"
	EventSessionRevoked     EventType = "session_revoked"
	EventPasswordChanged    EventType = "password_changed"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the position of s in the low < medium < high < critical
// ordering. Unknown severities rank below low.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// SecurityEvent is append-only; the only mutation ever applied is
// resolution. Resolved implies ResolvedBy and ResolvedAt are both set.
type SecurityEvent struct {
	ID         string
	EventType  EventType
	Severity   Severity
	SubjectID  string // empty for unauthenticated events
	IPAddress  string
	UserAgent  string
	Location   string
	Details    map[string]any
	CreatedAt  time.Time
	Resolved   bool
	ResolvedBy string
	ResolvedAt *time.Time
}

// AdminAction is one audit record of a privileged mutation. Records are
// never mutated or deleted.
type AdminAction struct {
	ID              string
	ActorID         string
	Action          string
	TargetSubjectID string
	IPAddress       string
	UserAgent       string
	Details         map[string]any
	CreatedAt       time.Time
}

type BackupCode struct {
	CodeHash []byte
	Used     bool
	UsedAt   *time.Time
}

// TwoFactorCredential holds the persisted (post-confirmation) state.
// A pending setup secret lives in the cache, not here.
type TwoFactorCredential struct {
	SubjectID   string
	Secret      string
	Enabled     bool
	BackupCodes []BackupCode
	EnabledAt   time.Time
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type Notification struct {
	ID          string
	SubjectID   string
	Type        string
	Title       string
	Message     string
	Priority    NotificationPriority
	Read        bool
	ActionLink  string
	ActionLabel string
	CreatedAt   time.Time
	ReadAt      *time.Time
}

// ScoreSnapshot is derived on demand and may be cached, never edited.
// Each sub-score is clamped to [0,25]; Total is their sum.
type ScoreSnapshot struct {
	Total           int
	Grade           string
	TwoFactor       int
	FailedLogins    int
	Suspicious      int
	AccountSecurity int
	ComputedAt      time.Time
}
