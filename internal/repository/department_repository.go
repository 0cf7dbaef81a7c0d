package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// DepartmentRepository encapsulates department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context, branchID *string, activeOnly bool) ([]domain.Department, error)
	ListTicketReceivers(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository instantiates repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentColumns = `id, name, type, description, is_active, can_receive_tickets, has_warehouse,
               is_service_provider, supervisor_id, ticket_responder_id, task_creator_id, branch_id,
               created_at, updated_at`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, type, description, is_active, can_receive_tickets, has_warehouse,
                                 is_service_provider, supervisor_id, ticket_responder_id, task_creator_id, branch_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Type,
		dept.Description,
		dept.IsActive,
		dept.CanReceiveTickets,
		dept.HasWarehouse,
		dept.IsServiceProvider,
		dept.SupervisorID,
		dept.TicketResponderID,
		dept.TaskCreatorID,
		dept.BranchID,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, type=$2, description=$3, is_active=$4, can_receive_tickets=$5,
            has_warehouse=$6, is_service_provider=$7, supervisor_id=$8, ticket_responder_id=$9,
            task_creator_id=$10, branch_id=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		dept.Name,
		dept.Type,
		dept.Description,
		dept.IsActive,
		dept.CanReceiveTickets,
		dept.HasWarehouse,
		dept.IsServiceProvider,
		dept.SupervisorID,
		dept.TicketResponderID,
		dept.TaskCreatorID,
		dept.BranchID,
		dept.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id=$1`, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Type,
		&dept.Description,
		&dept.IsActive,
		&dept.CanReceiveTickets,
		&dept.HasWarehouse,
		&dept.IsServiceProvider,
		&dept.SupervisorID,
		&dept.TicketResponderID,
		&dept.TaskCreatorID,
		&dept.BranchID,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, branchID *string, activeOnly bool) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE 1=1`
	var args []any
	if branchID != nil {
		args = append(args, *branchID)
		query += ` AND branch_id=$1`
	}
	if activeOnly {
		query += ` AND is_active=TRUE`
	}
	query += ` ORDER BY name`
	return r.list(ctx, query, args...)
}

func (r *departmentRepository) ListTicketReceivers(ctx context.Context) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments
        WHERE is_active=TRUE AND can_receive_tickets=TRUE ORDER BY name`
	return r.list(ctx, query)
}

func (r *departmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.Type,
			&dept.Description,
			&dept.IsActive,
			&dept.CanReceiveTickets,
			&dept.HasWarehouse,
			&dept.IsServiceProvider,
			&dept.SupervisorID,
			&dept.TicketResponderID,
			&dept.TaskCreatorID,
			&dept.BranchID,
			&dept.CreatedAt,
			&dept.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
