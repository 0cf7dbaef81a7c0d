package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// CategoryRepository encapsulates ticket category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, cat *domain.TicketCategory) error
	Update(ctx context.Context, cat *domain.TicketCategory) error
	GetByID(ctx context.Context, id string) (*domain.TicketCategory, error)
	ListByDepartment(ctx context.Context, departmentID string, activeOnly bool) ([]domain.TicketCategory, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, cat *domain.TicketCategory) error {
	const query = `
        INSERT INTO ticket_categories (department_id, name, description, requires_supervisor_approval, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cat.DepartmentID,
		cat.Name,
		cat.Description,
		cat.RequiresSupervisorApproval,
		cat.IsActive,
	).Scan(&cat.ID, &cat.CreatedAt, &cat.UpdatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, cat *domain.TicketCategory) error {
	const query = `
        UPDATE ticket_categories SET department_id=$1, name=$2, description=$3,
            requires_supervisor_approval=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		cat.DepartmentID,
		cat.Name,
		cat.Description,
		cat.RequiresSupervisorApproval,
		cat.IsActive,
		cat.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.TicketCategory, error) {
	const query = `
        SELECT id, department_id, name, description, requires_supervisor_approval, is_active, created_at, updated_at
        FROM ticket_categories WHERE id=$1`
	var cat domain.TicketCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.DepartmentID,
		&cat.Name,
		&cat.Description,
		&cat.RequiresSupervisorApproval,
		&cat.IsActive,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepository) ListByDepartment(ctx context.Context, departmentID string, activeOnly bool) ([]domain.TicketCategory, error) {
	query := `
        SELECT id, department_id, name, description, requires_supervisor_approval, is_active, created_at, updated_at
        FROM ticket_categories WHERE department_id=$1`
	if activeOnly {
		query += ` AND is_active=TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketCategory
	for rows.Next() {
		var cat domain.TicketCategory
		if err := rows.Scan(
			&cat.ID,
			&cat.DepartmentID,
			&cat.Name,
			&cat.Description,
			&cat.RequiresSupervisorApproval,
			&cat.IsActive,
			&cat.CreatedAt,
			&cat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}
