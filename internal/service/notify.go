package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/ids"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

// severityPriority maps event severity onto notification priority.
var severityPriority = map[models.Severity]models.NotificationPriority{
	models.SeverityLow:      models.PriorityLow,
	models.SeverityMedium:   models.PriorityMedium,
	models.SeverityHigh:     models.PriorityHigh,
	models.SeverityCritical: models.PriorityUrgent,
}

var eventTitles = map[models.EventType]string{
	models.EventFailedLogin:        "Failed login attempt",
	models.EventAdminLogin:         "New admin sign-in",
	models.EventSuspiciousActivity: "Suspicious activity detected",
	models.EventTwoFactorFailed:    "Failed two-factor attempt",
	models.EventRateLimit:          "Verification attempts throttled",
}

// NotificationService creates notifications from qualifying security
// events and serves the dashboard's notification CRUD. Creation happens
// synchronously inside EventService.Record; out-of-band alert delivery
// goes through the bounded AlertWorker.
type NotificationService struct {
	notifications repository.NotificationRepository
	alerts        *AlertWorker
	log           zerolog.Logger
	now           func() time.Time
}

func NewNotificationService(notifications repository.NotificationRepository, alerts *AlertWorker, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		alerts:        alerts,
		log:           log,
		now:           time.Now,
	}
}

// HandleEvent implements Dispatcher. Events with severity high or above
// always notify; an admin login from a previously unseen location
// notifies regardless of severity. Events without a subject have no
// inbox to deliver to and are skipped.
func (s *NotificationService) HandleEvent(ctx context.Context, event models.SecurityEvent) {
	if event.SubjectID == "" {
		return
	}
	if !s.qualifies(event) {
		return
	}

	title, ok := eventTitles[event.EventType]
	if !ok {
		title = "Security alert"
	}

	n := models.Notification{
		ID:          ids.New(),
		SubjectID:   event.SubjectID,
		Type:        string(event.EventType),
		Title:       title,
		Message:     s.message(event),
		Priority:    severityPriority[event.Severity],
		ActionLink:  "/dashboard/security/events/" + event.ID,
		ActionLabel: "Review activity",
		CreatedAt:   s.now(),
	}

	if err := s.notifications.Insert(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("notification write failed")
		return
	}

	if s.alerts != nil {
		s.alerts.Enqueue(n)
	}
}

func (s *NotificationService) qualifies(event models.SecurityEvent) bool {
	if event.Severity.AtLeast(models.SeverityHigh) {
		return true
	}
	if event.EventType == models.EventAdminLogin {
		newLocation, _ := event.Details["new_location"].(bool)
		return newLocation
	}
	return false
}

func (s *NotificationService) message(event models.SecurityEvent) string {
	where := event.Location
	if where == "" {
		where = event.IPAddress
	}
	if where == "" {
		return fmt.Sprintf("A %s event was recorded on your account.", event.EventType)
	}
	return fmt.Sprintf("A %s event was recorded on your account from %s.", event.EventType, where)
}

func (s *NotificationService) List(ctx context.Context, subjectID string, page int, limit int) ([]models.Notification, int, error) {
	return s.notifications.ListForSubject(ctx, subjectID, page, limit)
}

func (s *NotificationService) Get(ctx context.Context, id string) (models.Notification, error) {
	return s.notifications.GetByID(ctx, id)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (bool, error) {
	return s.notifications.MarkRead(ctx, id, s.now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, subjectID string) (int, error) {
	return s.notifications.MarkAllRead(ctx, subjectID, s.now())
}

func (s *NotificationService) Delete(ctx context.Context, id string) (bool, error) {
	return s.notifications.Delete(ctx, id)
}

// UnreadCount is always derived by counting, never stored, so it cannot
// drift from the rows themselves.
func (s *NotificationService) UnreadCount(ctx context.Context, subjectID string) (int, error) {
	return s.notifications.CountUnread(ctx, subjectID)
}
