package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditColumns = `id, actor_id, action, target_subject_id, ip_address, user_agent, details, created_at`

func (r *AuditRepository) Insert(ctx context.Context, action models.AdminAction) error {
	details, err := json.Marshal(action.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	const query = `
		INSERT INTO admin_actions (
			id, actor_id, action, target_subject_id, ip_address, user_agent, details, created_at
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8
		)
	`

	_, err = r.pool.Exec(ctx, query,
		action.ID,
		action.ActorID,
		action.Action,
		action.TargetSubjectID,
		action.IPAddress,
		action.UserAgent,
		details,
		action.CreatedAt,
	)
	return err
}

func scanAction(row pgx.Row) (models.AdminAction, error) {
	var (
		a       models.AdminAction
		target  *string
		details []byte
	)
	err := row.Scan(
		&a.ID,
		&a.ActorID,
		&a.Action,
		&target,
		&a.IPAddress,
		&a.UserAgent,
		&details,
		&a.CreatedAt,
	)
	if err != nil {
		return models.AdminAction{}, err
	}
	if target != nil {
		a.TargetSubjectID = *target
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return models.AdminAction{}, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return a, nil
}

func (r *AuditRepository) Query(ctx context.Context, filter repository.AuditFilter, page int, limit int) ([]models.AdminAction, int, error) {
	where, args := buildAuditWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM admin_actions` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(`SELECT `+auditColumns+` FROM admin_actions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	actions, err := r.list(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

func (r *AuditRepository) ListAll(ctx context.Context, filter repository.AuditFilter) ([]models.AdminAction, error) {
	where, args := buildAuditWhere(filter)
	query := `SELECT ` + auditColumns + ` FROM admin_actions` + where + ` ORDER BY created_at ASC`
	return r.list(ctx, query, args...)
}

func (r *AuditRepository) list(ctx context.Context, query string, args ...any) ([]models.AdminAction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.AdminAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

func buildAuditWhere(filter repository.AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.ActorID != "" {
		add("actor_id = $%d", filter.ActorID)
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
			"(action ILIKE '%%' || $%d || '%%' OR details::text ILIKE '%%' || $%d || '%%')", n, n))
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
