package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type TwoFactorRepository struct {
	pool *pgxpool.Pool
}

func NewTwoFactorRepository(pool *pgxpool.Pool) *TwoFactorRepository {
	return &TwoFactorRepository{pool: pool}
}

func (r *TwoFactorRepository) Get(ctx context.Context, subjectID string) (models.TwoFactorCredential, error) {
	const query = `
		SELECT subject_id, secret, enabled, enabled_at
		FROM two_factor_credentials
		WHERE subject_id = $1
	`

	var cred models.TwoFactorCredential
	err := r.pool.QueryRow(ctx, query, subjectID).Scan(
		&cred.SubjectID,
		&cred.Secret,
		&cred.Enabled,
		&cred.EnabledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TwoFactorCredential{}, repository.ErrCredentialNotFound
		}
		return models.TwoFactorCredential{}, err
	}

	const codesQuery = `
		SELECT code_hash, used, used_at
		FROM two_factor_backup_codes
		WHERE subject_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, codesQuery, subjectID)
	if err != nil {
		return models.TwoFactorCredential{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var code models.BackupCode
		if err := rows.Scan(&code.CodeHash, &code.Used, &code.UsedAt); err != nil {
			return models.TwoFactorCredential{}, err
		}
		cred.BackupCodes = append(cred.BackupCodes, code)
	}
	return cred, rows.Err()
}

// Save writes the confirmed credential and its backup codes in one
// transaction, replacing any previous enrollment.
func (r *TwoFactorRepository) Save(ctx context.Context, cred models.TwoFactorCredential) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const upsert = `
		INSERT INTO two_factor_credentials (subject_id, secret, enabled, enabled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subject_id)
		DO UPDATE SET secret = EXCLUDED.secret, enabled = EXCLUDED.enabled, enabled_at = EXCLUDED.enabled_at
	`
	if _, err := tx.Exec(ctx, upsert, cred.SubjectID, cred.Secret, cred.Enabled, cred.EnabledAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE subject_id = $1`, cred.SubjectID); err != nil {
		return err
	}

	const insertCode = `
		INSERT INTO two_factor_backup_codes (subject_id, position, code_hash, used, used_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, code := range cred.BackupCodes {
		if _, err := tx.Exec(ctx, insertCode, cred.SubjectID, i, code.CodeHash, code.Used, code.UsedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TwoFactorRepository) Disable(ctx context.Context, subjectID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE subject_id = $1`, subjectID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_credentials WHERE subject_id = $1`, subjectID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ConsumeBackupCode flips the used flag only if it is still false; the
// row condition makes concurrent double-submission resolve to exactly
// one winner.
func (r *TwoFactorRepository) ConsumeBackupCode(ctx context.Context, subjectID string, codeHash []byte, at time.Time) (bool, error) {
	const query = `
		UPDATE two_factor_backup_codes
		SET used = TRUE, used_at = $3
		WHERE subject_id = $1 AND code_hash = $2 AND used = FALSE
	`
	cmd, err := r.pool.Exec(ctx, query, subjectID, codeHash, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *TwoFactorRepository) CountEnabled(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	const query = `
		SELECT COUNT(*) FROM two_factor_credentials
		WHERE enabled = TRUE AND subject_id = ANY($1)
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, subjectIDs).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
