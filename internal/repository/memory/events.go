package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type EventRepository struct {
	mu     sync.Mutex
	events map[string]models.SecurityEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]models.SecurityEvent)}
}

func (r *EventRepository) Insert(_ context.Context, event models.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (models.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return models.SecurityEvent{}, repository.ErrEventNotFound
	}
	return event, nil
}

func (r *EventRepository) MarkResolved(_ context.Context, id string, resolvedBy string, at time.Time) (models.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return models.SecurityEvent{}, repository.ErrEventNotFound
	}
	if event.Resolved {
		return event, nil
	}
	event.Resolved = true
	event.ResolvedBy = resolvedBy
	resolvedAt := at
	event.ResolvedAt = &resolvedAt
	r.events[id] = event
	return event, nil
}

func (r *EventRepository) Query(_ context.Context, filter repository.EventFilter, page int, limit int) ([]models.SecurityEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.SecurityEvent
	for _, event := range r.events {
		if matchEvent(event, filter) {
			matched = append(matched, event)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchEvent(event models.SecurityEvent, filter repository.EventFilter) bool {
	if filter.EventType != "" && event.EventType != filter.EventType {
		return false
	}
	if filter.SubjectID != "" && event.SubjectID != filter.SubjectID {
		return false
	}
	if filter.Start != nil && event.CreatedAt.Before(*filter.Start) {
		return false
	}
	if filter.End != nil && event.CreatedAt.After(*filter.End) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		details, _ := json.Marshal(event.Details)
		if !strings.Contains(strings.ToLower(string(event.EventType)), needle) &&
			!strings.Contains(strings.ToLower(string(details)), needle) {
			return false
		}
	}
	return true
}

func (r *EventRepository) CountByTypeSince(_ context.Context, eventType models.EventType, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if event.EventType == eventType && !event.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *EventRepository) CountUnresolvedAtOrAbove(_ context.Context, min models.Severity) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, event := range r.events {
		if !event.Resolved && event.Severity.AtLeast(min) {
			count++
		}
	}
	return count, nil
}
