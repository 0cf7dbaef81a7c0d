package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// ActivityLogRepository encapsulates audit trail persistence.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLog, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.ActivityLog, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository instantiates repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

const activityColumns = `id, actor_id, action, ticket_id, task_id, field, old_value, new_value, note, created_at`

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (actor_id, action, ticket_id, task_id, field, old_value, new_value, note)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.TicketID,
		entry.TaskID,
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ActivityLog, error) {
	return r.list(ctx,
		`SELECT `+activityColumns+` FROM activity_logs WHERE ticket_id=$1 ORDER BY created_at`,
		ticketID)
}

func (r *activityLogRepository) ListByTask(ctx context.Context, taskID string) ([]domain.ActivityLog, error) {
	return r.list(ctx,
		`SELECT `+activityColumns+` FROM activity_logs WHERE task_id=$1 ORDER BY created_at`,
		taskID)
}

func (r *activityLogRepository) list(ctx context.Context, query string, arg any) ([]domain.ActivityLog, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivityLogs(rows)
}

func scanActivityLogs(rows pgx.Rows) ([]domain.ActivityLog, error) {
	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TicketID,
			&entry.TaskID,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
