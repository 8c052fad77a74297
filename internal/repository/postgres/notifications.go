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

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, subject_id, type, title, message, priority, read, action_link, action_label, created_at, read_at`

func (r *NotificationRepository) Insert(ctx context.Context, n models.Notification) error {
	const query = `
		INSERT INTO notifications (
			id, subject_id, type, title, message, priority, read, action_link, action_label, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9
		)
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.SubjectID,
		n.Type,
		n.Title,
		n.Message,
		n.Priority,
		n.ActionLink,
		n.ActionLabel,
		n.CreatedAt,
	)
	return err
}

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID,
		&n.SubjectID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Priority,
		&n.Read,
		&n.ActionLink,
		&n.ActionLabel,
		&n.CreatedAt,
		&n.ReadAt,
	)
	return n, err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (models.Notification, error) {
	const query = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	n, err := scanNotification(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Notification{}, repository.ErrNotificationNotFound
		}
		return models.Notification{}, err
	}
	return n, nil
}

func (r *NotificationRepository) ListForSubject(ctx context.Context, subjectID string, page int, limit int) ([]models.Notification, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE subject_id = $1`, subjectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, subjectID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE notifications SET read = TRUE, read_at = $2 WHERE id = $1 AND read = FALSE`
	cmd, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, subjectID string, at time.Time) (int, error) {
	const query = `UPDATE notifications SET read = TRUE, read_at = $2 WHERE subject_id = $1 AND read = FALSE`
	cmd, err := r.pool.Exec(ctx, query, subjectID, at)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM notifications WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE subject_id = $1 AND read = FALSE`
	var count int
	if err := r.pool.QueryRow(ctx, query, subjectID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
