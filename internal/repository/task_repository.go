package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// TaskFilter captures task search parameters.
type TaskFilter struct {
	CreatedByID  *string
	AssignedToID *string
	DepartmentID *string
	Statuses     []domain.TicketStatus
	Limit        int
	Offset       int
}

// TaskRepository encapsulates task persistence, including task replies and
// deadline extension requests.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.TicketTask) error
	Update(ctx context.Context, task *domain.TicketTask) error
	GetByID(ctx context.Context, id string) (*domain.TicketTask, error)
	ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.TicketTask, error)
	// ListReminderCandidates returns unfinished tasks with a deadline and at
	// least one reminder still unsent.
	ListReminderCandidates(ctx context.Context) ([]domain.TicketTask, error)
	MarkReminderSent(ctx context.Context, taskID, window string) error

	CreateReply(ctx context.Context, reply *domain.TaskReply) error
	ListReplies(ctx context.Context, taskID string) ([]domain.TaskReply, error)

	CreateExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error
	GetExtension(ctx context.Context, id string) (*domain.DeadlineExtensionRequest, error)
	ListExtensions(ctx context.Context, taskID string) ([]domain.DeadlineExtensionRequest, error)
	// ApplyExtension approves the request, replaces the task deadline and
	// re-arms both reminder flags in one transaction.
	ApplyExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error
	UpdateExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, description, priority, status, created_by_id, assigned_to_id,
               department_id, deadline, reminder_8h_sent, reminder_2h_sent, created_at, updated_at, resolved_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.TicketTask) error {
	const query = `
        INSERT INTO ticket_tasks (title, description, priority, status, created_by_id, assigned_to_id,
                                  department_id, deadline, reminder_8h_sent, reminder_2h_sent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.CreatedByID,
		task.AssignedToID,
		task.DepartmentID,
		task.Deadline,
		task.Reminder8hSent,
		task.Reminder2hSent,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.TicketTask) error {
	const query = `
        UPDATE ticket_tasks SET title=$1, description=$2, priority=$3, status=$4, assigned_to_id=$5,
            department_id=$6, deadline=$7, reminder_8h_sent=$8, reminder_2h_sent=$9, resolved_at=$10,
            updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.AssignedToID,
		task.DepartmentID,
		task.Deadline,
		task.Reminder8hSent,
		task.Reminder2hSent,
		task.ResolvedAt,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.TicketTask, error) {
	var task domain.TicketTask
	if err := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM ticket_tasks WHERE id=$1`, id).
		Scan(taskScanDest(&task)...); err != nil {
		return nil, err
	}
	return &task, nil
}

func taskScanDest(t *domain.TicketTask) []any {
	return []any{
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.CreatedByID,
		&t.AssignedToID,
		&t.DepartmentID,
		&t.Deadline,
		&t.Reminder8hSent,
		&t.Reminder2hSent,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
	}
}

func (r *taskRepository) ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.TicketTask, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM ticket_tasks WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		taskColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) ListReminderCandidates(ctx context.Context) ([]domain.TicketTask, error) {
	const query = `
        SELECT ` + taskColumns + ` FROM ticket_tasks
        WHERE deadline IS NOT NULL
          AND status NOT IN ('resolved','closed')
          AND (reminder_8h_sent=FALSE OR reminder_2h_sent=FALSE)
        ORDER BY deadline`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) MarkReminderSent(ctx context.Context, taskID, window string) error {
	var query string
	switch window {
	case "8h":
		query = `UPDATE ticket_tasks SET reminder_8h_sent=TRUE, updated_at=NOW() WHERE id=$1`
	case "2h":
		query = `UPDATE ticket_tasks SET reminder_2h_sent=TRUE, updated_at=NOW() WHERE id=$1`
	default:
		return fmt.Errorf("unknown reminder window %q", window)
	}
	cmd, err := r.pool.Exec(ctx, query, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTasks(rows pgx.Rows) ([]domain.TicketTask, error) {
	var result []domain.TicketTask
	for rows.Next() {
		var task domain.TicketTask
		if err := rows.Scan(taskScanDest(&task)...); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) CreateReply(ctx context.Context, reply *domain.TaskReply) error {
	const query = `
        INSERT INTO task_replies (task_id, author_id, content, attachment_key)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		reply.TaskID,
		reply.AuthorID,
		reply.Content,
		reply.AttachmentKey,
	).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *taskRepository) ListReplies(ctx context.Context, taskID string) ([]domain.TaskReply, error) {
	const query = `
        SELECT id, task_id, author_id, content, attachment_key, created_at
        FROM task_replies WHERE task_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskReply
	for rows.Next() {
		var reply domain.TaskReply
		if err := rows.Scan(
			&reply.ID,
			&reply.TaskID,
			&reply.AuthorID,
			&reply.Content,
			&reply.AttachmentKey,
			&reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}

const extensionColumns = `id, task_id, requested_by_id, requested_deadline, reason, status,
               decided_by_id, decided_at, created_at`

func (r *taskRepository) CreateExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error {
	const query = `
        INSERT INTO deadline_extension_requests (task_id, requested_by_id, requested_deadline, reason, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		req.TaskID,
		req.RequestedByID,
		req.RequestedDeadline,
		req.Reason,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)
}

func (r *taskRepository) GetExtension(ctx context.Context, id string) (*domain.DeadlineExtensionRequest, error) {
	var req domain.DeadlineExtensionRequest
	if err := r.pool.QueryRow(ctx,
		`SELECT `+extensionColumns+` FROM deadline_extension_requests WHERE id=$1`, id,
	).Scan(extensionScanDest(&req)...); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *taskRepository) ListExtensions(ctx context.Context, taskID string) ([]domain.DeadlineExtensionRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+extensionColumns+` FROM deadline_extension_requests WHERE task_id=$1 ORDER BY created_at DESC`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DeadlineExtensionRequest
	for rows.Next() {
		var req domain.DeadlineExtensionRequest
		if err := rows.Scan(extensionScanDest(&req)...); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func extensionScanDest(req *domain.DeadlineExtensionRequest) []any {
	return []any{
		&req.ID,
		&req.TaskID,
		&req.RequestedByID,
		&req.RequestedDeadline,
		&req.Reason,
		&req.Status,
		&req.DecidedByID,
		&req.DecidedAt,
		&req.CreatedAt,
	}
}

func (r *taskRepository) UpdateExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error {
	const query = `
        UPDATE deadline_extension_requests SET status=$1, decided_by_id=$2, decided_at=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, req.Status, req.DecidedByID, req.DecidedAt, req.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) ApplyExtension(ctx context.Context, req *domain.DeadlineExtensionRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx,
		`UPDATE deadline_extension_requests SET status=$1, decided_by_id=$2, decided_at=$3 WHERE id=$4`,
		req.Status, req.DecidedByID, req.DecidedAt, req.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	// New deadline means the reminder windows start over.
	cmd, err = tx.Exec(ctx,
		`UPDATE ticket_tasks SET deadline=$1, reminder_8h_sent=FALSE, reminder_2h_sent=FALSE, updated_at=NOW()
         WHERE id=$2`,
		req.RequestedDeadline, req.TaskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}
