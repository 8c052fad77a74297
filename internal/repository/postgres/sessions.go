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

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, subject_id, token_hash, ip_address, user_agent, browser, os, device_class, location, last_activity, expires_at, is_active, created_at`

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (
			id, subject_id, token_hash, ip_address, user_agent, browser, os, device_class, location, last_activity, expires_at, is_active, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.SubjectID,
		session.TokenHash,
		session.IPAddress,
		session.UserAgent,
		session.Browser,
		session.OS,
		session.DeviceClass,
		session.Location,
		session.LastActivity,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID,
		&s.SubjectID,
		&s.TokenHash,
		&s.IPAddress,
		&s.UserAgent,
		&s.Browser,
		&s.OS,
		&s.DeviceClass,
		&s.Location,
		&s.LastActivity,
		&s.ExpiresAt,
		&s.IsActive,
		&s.CreatedAt,
	)
	return s, err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, repository.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sessions WHERE token_hash = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, repository.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE sessions SET last_activity = $2 WHERE id = $1 AND is_active = TRUE`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *SessionRepository) Revoke(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE sessions SET is_active = FALSE WHERE id = $1 AND is_active = TRUE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *SessionRepository) RevokeAllForSubject(ctx context.Context, subjectID string) (int, error) {
	const query = `UPDATE sessions SET is_active = FALSE WHERE subject_id = $1 AND is_active = TRUE`
	cmd, err := r.pool.Exec(ctx, query, subjectID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *SessionRepository) ListActive(ctx context.Context, now time.Time) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE is_active = TRUE AND expires_at > $1
		ORDER BY last_activity DESC
	`
	return r.list(ctx, query, now)
}

func (r *SessionRepository) ListActiveForSubject(ctx context.Context, subjectID string, now time.Time) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE subject_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY last_activity DESC
	`
	return r.list(ctx, query, subjectID, now)
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Sweep(ctx context.Context, now time.Time, staleBefore time.Time) (int, error) {
	const query = `
		UPDATE sessions
		SET is_active = FALSE
		WHERE is_active = TRUE AND (expires_at <= $1 OR last_activity < $2)
	`
	cmd, err := r.pool.Exec(ctx, query, now, staleBefore)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *SessionRepository) CountActiveCreatedBefore(ctx context.Context, now time.Time, cutoff time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM sessions
		WHERE is_active = TRUE AND expires_at > $1 AND created_at < $2
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, now, cutoff).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
