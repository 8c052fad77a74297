package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type TwoFactorRepository struct {
	mu    sync.Mutex
	creds map[string]*models.TwoFactorCredential
}

func NewTwoFactorRepository() *TwoFactorRepository {
	return &TwoFactorRepository{creds: make(map[string]*models.TwoFactorCredential)}
}

func (r *TwoFactorRepository) Get(_ context.Context, subjectID string) (models.TwoFactorCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[subjectID]
	if !ok {
		return models.TwoFactorCredential{}, repository.ErrCredentialNotFound
	}
	out := *cred
	out.BackupCodes = append([]models.BackupCode(nil), cred.BackupCodes...)
	return out, nil
}

func (r *TwoFactorRepository) Save(_ context.Context, cred models.TwoFactorCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cred
	stored.BackupCodes = append([]models.BackupCode(nil), cred.BackupCodes...)
	r.creds[cred.SubjectID] = &stored
	return nil
}

func (r *TwoFactorRepository) Disable(_ context.Context, subjectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, subjectID)
	return nil
}

func (r *TwoFactorRepository) ConsumeBackupCode(_ context.Context, subjectID string, codeHash []byte, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[subjectID]
	if !ok {
		return false, nil
	}
	for i := range cred.BackupCodes {
		code := &cred.BackupCodes[i]
		if code.Used || !bytes.Equal(code.CodeHash, codeHash) {
			continue
		}
		code.Used = true
		usedAt := at
		code.UsedAt = &usedAt
		return true, nil
	}
	return false, nil
}

func (r *TwoFactorRepository) CountEnabled(_ context.Context, subjectIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, id := range subjectIDs {
		if cred, ok := r.creds[id]; ok && cred.Enabled {
			count++
		}
	}
	return count, nil
}
