package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

var errInsertFailed = errors.New("insert failed")

type UserRepository struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func (r *UserRepository) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (r *UserRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	loginAt := at
	user.LastLoginAt = &loginAt
	r.users[id] = user
	return nil
}

func (r *UserRepository) ListAdminIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, user := range r.users {
		if authz.IsElevated(user.Role) && user.Status == models.UserStatusActive {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (r *UserRepository) CountAdminsWithoutLoginSince(_ context.Context, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, user := range r.users {
		if !authz.IsElevated(user.Role) || user.Status != models.UserStatusActive {
			continue
		}
		if user.LastLoginAt == nil || user.LastLoginAt.Before(since) {
			count++
		}
	}
	return count, nil
}
