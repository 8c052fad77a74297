package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type NotificationRepository struct {
	mu    sync.Mutex
	items map[string]models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: make(map[string]models.Notification)}
}

func (r *NotificationRepository) Insert(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.ID] = n
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return models.Notification{}, repository.ErrNotificationNotFound
	}
	return n, nil
}

func (r *NotificationRepository) ListForSubject(_ context.Context, subjectID string, page int, limit int) ([]models.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Notification
	for _, n := range r.items {
		if n.SubjectID == subjectID {
			matched = append(matched, n)
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

func (r *NotificationRepository) MarkRead(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.Read {
		return false, nil
	}
	n.Read = true
	readAt := at
	n.ReadAt = &readAt
	r.items[id] = n
	return true, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, subjectID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, n := range r.items {
		if n.SubjectID == subjectID && !n.Read {
			n.Read = true
			readAt := at
			n.ReadAt = &readAt
			r.items[id] = n
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, subjectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.SubjectID == subjectID && !n.Read {
			count++
		}
	}
	return count, nil
}
