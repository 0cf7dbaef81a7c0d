package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// UserFilter captures user search parameters.
type UserFilter struct {
	DepartmentID *string
	Role         *domain.Role
	ActiveOnly   bool
	SearchTerm   *string
	Limit        int
	Offset       int
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// UpdateWithSupervision updates the user row and replaces its supervised
	// department set in one transaction.
	UpdateWithSupervision(ctx context.Context, user *domain.User, supervisedIDs []string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.User, error)
	GetByAdminUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, phone, national_id, employee_code,
               role, department_role, department_id, assigned_by_id,
               admin_username, admin_password_hash, is_active, is_admin, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, phone, national_id, employee_code,
                           role, department_role, department_id, assigned_by_id,
                           admin_username, admin_password_hash, is_active, is_admin)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.NationalID,
		user.EmployeeCode,
		user.Role,
		user.DepartmentRole,
		user.DepartmentID,
		user.AssignedByID,
		user.AdminUsername,
		user.AdminPasswordHash,
		user.IsActive,
		user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	cmd, err := r.pool.Exec(ctx, userUpdateQuery, userUpdateArgs(user)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const userUpdateQuery = `
        UPDATE users SET first_name=$1, last_name=$2, email=$3, phone=$4, national_id=$5,
            employee_code=$6, role=$7, department_role=$8, department_id=$9, assigned_by_id=$10,
            admin_username=$11, admin_password_hash=$12, is_active=$13, updated_at=NOW()
        WHERE id=$14`

func userUpdateArgs(user *domain.User) []any {
	return []any{
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.NationalID,
		user.EmployeeCode,
		user.Role,
		user.DepartmentRole,
		user.DepartmentID,
		user.AssignedByID,
		user.AdminUsername,
		user.AdminPasswordHash,
		user.IsActive,
		user.ID,
	}
}

func (r *userRepository) UpdateWithSupervision(ctx context.Context, user *domain.User, supervisedIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, userUpdateQuery, userUpdateArgs(user)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM department_supervisors WHERE user_id=$1`, user.ID); err != nil {
		return err
	}
	for _, deptID := range supervisedIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO department_supervisors (user_id, department_id) VALUES ($1,$2)`,
			user.ID, deptID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE national_id=$1`, nationalID)
}

func (r *userRepository) GetByAdminUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE admin_username=$1`, username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.NationalID,
		&user.EmployeeCode,
		&user.Role,
		&user.DepartmentRole,
		&user.DepartmentID,
		&user.AssignedByID,
		&user.AdminUsername,
		&user.AdminPasswordHash,
		&user.IsActive,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadSupervised(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// loadSupervised fills SupervisedDepartmentIDs from both the M2M table and
// departments whose supervisor field points at the user.
func (r *userRepository) loadSupervised(ctx context.Context, user *domain.User) error {
	const query = `
        SELECT department_id FROM department_supervisors WHERE user_id=$1
        UNION
        SELECT id FROM departments WHERE supervisor_id=$1`

	rows, err := r.pool.Query(ctx, query, user.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var deptID string
		if err := rows.Scan(&deptID); err != nil {
			return err
		}
		user.SupervisedDepartmentIDs = append(user.SupervisedDepartmentIDs, deptID)
	}
	return rows.Err()
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active=TRUE")
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(first_name) LIKE %s OR LOWER(last_name) LIKE %s OR employee_code LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY last_name, first_name LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Phone,
			&user.NationalID,
			&user.EmployeeCode,
			&user.Role,
			&user.DepartmentRole,
			&user.DepartmentID,
			&user.AssignedByID,
			&user.AdminUsername,
			&user.AdminPasswordHash,
			&user.IsActive,
			&user.IsAdmin,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.List(ctx, UserFilter{Role: &role, ActiveOnly: true})
}
