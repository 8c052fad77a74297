package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, event_type, severity, subject_id, ip_address, user_agent, location, details, created_at, resolved, resolved_by, resolved_at`

func (r *EventRepository) Insert(ctx context.Context, event models.SecurityEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	const query = `
		INSERT INTO security_events (
			id, event_type, severity, subject_id, ip_address, user_agent, location, details, created_at, resolved
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, FALSE
		)
	`

	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.Severity,
		event.SubjectID,
		event.IPAddress,
		event.UserAgent,
		event.Location,
		details,
		event.CreatedAt,
	)
	return err
}

func scanEvent(row pgx.Row) (models.SecurityEvent, error) {
	var (
		e          models.SecurityEvent
		subjectID  *string
		details    []byte
		resolvedBy *string
	)
	err := row.Scan(
		&e.ID,
		&e.EventType,
		&e.Severity,
		&subjectID,
		&e.IPAddress,
		&e.UserAgent,
		&e.Location,
		&details,
		&e.CreatedAt,
		&e.Resolved,
		&resolvedBy,
		&e.ResolvedAt,
	)
	if err != nil {
		return models.SecurityEvent{}, err
	}
	if subjectID != nil {
		e.SubjectID = *subjectID
	}
	if resolvedBy != nil {
		e.ResolvedBy = *resolvedBy
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return models.SecurityEvent{}, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return e, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (models.SecurityEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM security_events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SecurityEvent{}, repository.ErrEventNotFound
		}
		return models.SecurityEvent{}, err
	}
	return event, nil
}

func (r *EventRepository) MarkResolved(ctx context.Context, id string, resolvedBy string, at time.Time) (models.SecurityEvent, error) {
	// Conditional on resolved = FALSE so a second resolve leaves the
	// original resolver and timestamp intact.
	const query = `
		UPDATE security_events
		SET resolved = TRUE, resolved_by = $2, resolved_at = $3
		WHERE id = $1 AND resolved = FALSE
	`
	if _, err := r.pool.Exec(ctx, query, id, resolvedBy, at); err != nil {
		return models.SecurityEvent{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) Query(ctx context.Context, filter repository.EventFilter, page int, limit int) ([]models.SecurityEvent, int, error) {
	where, args := buildEventWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM security_events` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(`SELECT `+eventColumns+` FROM security_events%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []models.SecurityEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	return events, total, rows.Err()
}

func buildEventWhere(filter repository.EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.EventType != "" {
		add("event_type = $%d", filter.EventType)
	}
	if filter.SubjectID != "" {
		add("subject_id = $%d", filter.SubjectID)
	}
	if filter.Start != nil {
		add("created_at >= $%d", *filter.Start)
	}
	if filter.End != nil {
		add("created_at <= $%d", *filter.End)
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(event_type ILIKE '%%' || $%d || '%%' OR details::text ILIKE '%%' || $%d || '%%')", n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

func (r *EventRepository) CountByTypeSince(ctx context.Context, eventType models.EventType, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM security_events WHERE event_type = $1 AND created_at >= $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, eventType, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EventRepository) CountUnresolvedAtOrAbove(ctx context.Context, min models.Severity) (int, error) {
	severities := make([]string, 0, 4)
	for _, s := range []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical} {
		if s.AtLeast(min) {
			severities = append(severities, string(s))
		}
	}

	const query = `SELECT COUNT(*) FROM security_events WHERE resolved = FALSE AND severity = ANY($1)`
	var count int
	if err := r.pool.QueryRow(ctx, query, severities).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
