package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// BranchRepository encapsulates branch persistence.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	GetByCode(ctx context.Context, code string) (*domain.Branch, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Branch, error)
}

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository instantiates repository.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	const query = `
        INSERT INTO branches (name, branch_code, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		branch.Name,
		branch.BranchCode,
		branch.Description,
		branch.IsActive,
	).Scan(&branch.ID, &branch.CreatedAt, &branch.UpdatedAt)
}

func (r *branchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	const query = `
        UPDATE branches SET name=$1, branch_code=$2, description=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		branch.Name,
		branch.BranchCode,
		branch.Description,
		branch.IsActive,
		branch.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	const query = `
        SELECT id, name, branch_code, description, is_active, created_at, updated_at
        FROM branches WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *branchRepository) GetByCode(ctx context.Context, code string) (*domain.Branch, error) {
	const query = `
        SELECT id, name, branch_code, description, is_active, created_at, updated_at
        FROM branches WHERE branch_code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *branchRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Branch, error) {
	var branch domain.Branch
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&branch.ID,
		&branch.Name,
		&branch.BranchCode,
		&branch.Description,
		&branch.IsActive,
		&branch.CreatedAt,
		&branch.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context, activeOnly bool) ([]domain.Branch, error) {
	query := `SELECT id, name, branch_code, description, is_active, created_at, updated_at FROM branches`
	if activeOnly {
		query += ` WHERE is_active=TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Branch
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(
			&branch.ID,
			&branch.Name,
			&branch.BranchCode,
			&branch.Description,
			&branch.IsActive,
			&branch.CreatedAt,
			&branch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, branch)
	}
	return result, rows.Err()
}
