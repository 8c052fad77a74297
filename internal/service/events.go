package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/ids"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

// Dispatcher receives every stored event and decides whether it becomes
// a user-facing notification. Called synchronously after the write.
type Dispatcher interface {
	HandleEvent(ctx context.Context, event models.SecurityEvent)
}

type EventService struct {
	events     repository.EventRepository
	dispatcher Dispatcher
	log        zerolog.Logger
	now        func() time.Time
}

func NewEventService(events repository.EventRepository, dispatcher Dispatcher, log zerolog.Logger) *EventService {
	return &EventService{
		events:     events,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

type RecordEventInput struct {
	EventType models.EventType
	Severity  models.Severity
	SubjectID string // optional, empty for unauthenticated events
	IPAddress string
	UserAgent string
	Location  string
	Details   map[string]any
}

// Record appends a new unresolved event and hands it to the dispatcher.
func (s *EventService) Record(ctx context.Context, input RecordEventInput) (models.SecurityEvent, error) {
	event := models.SecurityEvent{
		ID:        ids.New(),
		EventType: input.EventType,
		Severity:  input.Severity,
		SubjectID: input.SubjectID,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		Location:  input.Location,
		Details:   input.Details,
		CreatedAt: s.now(),
		Resolved:  false,
	}

	if err := s.events.Insert(ctx, event); err != nil {
		return models.SecurityEvent{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.HandleEvent(ctx, event)
	}
	return event, nil
}

// TryRecord is the fire-safe variant used by callers whose primary
// operation must not fail on a logging error: the failure is logged
// here and swallowed.
func (s *EventService) TryRecord(ctx context.Context, input RecordEventInput) {
	if _, err := s.Record(ctx, input); err != nil {
		s.log.Warn().Err(err).
			Str("event_type", string(input.EventType)).
			Msg("security event write failed")
	}
}

// Resolve marks an event handled. Resolving an already-resolved event
// returns the existing record unchanged.
func (s *EventService) Resolve(ctx context.Context, eventID string, resolvedBy string) (models.SecurityEvent, error) {
	return s.events.MarkResolved(ctx, eventID, resolvedBy, s.now())
}

func (s *EventService) Query(ctx context.Context, filter repository.EventFilter, page int, limit int) ([]models.SecurityEvent, int, error) {
	return s.events.Query(ctx, filter, page, limit)
}
