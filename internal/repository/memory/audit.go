package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type AuditRepository struct {
	mu      sync.Mutex
	actions []models.AdminAction

	// FailInserts makes Insert return an error; tests use it to prove
	// audit failures never propagate to the caller's operation.
	FailInserts bool
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(_ context.Context, action models.AdminAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInserts {
		return errInsertFailed
	}
	r.actions = append(r.actions, action)
	return nil
}

func (r *AuditRepository) Query(_ context.Context, filter repository.AuditFilter, page int, limit int) ([]models.AdminAction, int, error) {
	matched := r.matching(filter)
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

func (r *AuditRepository) ListAll(_ context.Context, filter repository.AuditFilter) ([]models.AdminAction, error) {
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *AuditRepository) matching(filter repository.AuditFilter) []models.AdminAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AdminAction
	for _, action := range r.actions {
		if filter.Action != "" && action.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && action.ActorID != filter.ActorID {
			continue
		}
		if filter.Start != nil && action.CreatedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && action.CreatedAt.After(*filter.End) {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			details, _ := json.Marshal(action.Details)
			if !strings.Contains(strings.ToLower(action.Action), needle) &&
				!strings.Contains(strings.ToLower(string(details)), needle) {
				continue
			}
		}
		out = append(out, action)
	}
	return out
}
