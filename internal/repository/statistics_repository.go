package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// StatusCount pairs a lifecycle status with how many tickets carry it.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int
}

// PriorityCount pairs a priority with its ticket count.
type PriorityCount struct {
	Priority domain.TicketPriority
	Count    int
}

// DepartmentCount pairs a target department with its ticket count.
type DepartmentCount struct {
	DepartmentID   string
	DepartmentName string
	Count          int
}

// TechnicianLoad summarizes one technician's open workload.
type TechnicianLoad struct {
	UserID    string
	FullName  string
	OpenCount int
	Resolved  int
}

// StatisticsRepository runs the aggregate queries behind reports.
type StatisticsRepository interface {
	CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error)
	CountByPriority(ctx context.Context, from, to time.Time) ([]PriorityCount, error)
	CountByDepartment(ctx context.Context, from, to time.Time) ([]DepartmentCount, error)
	TechnicianLoads(ctx context.Context, from, to time.Time) ([]TechnicianLoad, error)
	AverageResolutionHours(ctx context.Context, from, to time.Time) (float64, error)
}

type statisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository instantiates repository.
func NewStatisticsRepository(pool *pgxpool.Pool) StatisticsRepository {
	return &statisticsRepository{pool: pool}
}

func (r *statisticsRepository) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	const query = `
        SELECT status, COUNT(*) FROM tickets
        WHERE created_at >= $1 AND created_at <= $2
        GROUP BY status ORDER BY status`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *statisticsRepository) CountByPriority(ctx context.Context, from, to time.Time) ([]PriorityCount, error) {
	const query = `
        SELECT priority, COUNT(*) FROM tickets
        WHERE created_at >= $1 AND created_at <= $2
        GROUP BY priority ORDER BY priority`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PriorityCount
	for rows.Next() {
		var pc PriorityCount
		if err := rows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, err
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

func (r *statisticsRepository) CountByDepartment(ctx context.Context, from, to time.Time) ([]DepartmentCount, error) {
	const query = `
        SELECT d.id, d.name, COUNT(t.id)
        FROM tickets t JOIN departments d ON d.id = t.target_department_id
        WHERE t.created_at >= $1 AND t.created_at <= $2
        GROUP BY d.id, d.name ORDER BY COUNT(t.id) DESC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DepartmentCount
	for rows.Next() {
		var dc DepartmentCount
		if err := rows.Scan(&dc.DepartmentID, &dc.DepartmentName, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func (r *statisticsRepository) TechnicianLoads(ctx context.Context, from, to time.Time) ([]TechnicianLoad, error) {
	const query = `
        SELECT u.id, u.first_name || ' ' || u.last_name,
               COUNT(t.id) FILTER (WHERE t.status IN ('open','in_progress','waiting_for_user')),
               COUNT(t.id) FILTER (WHERE t.status IN ('resolved','closed'))
        FROM users u LEFT JOIN tickets t
            ON t.assigned_to_id = u.id AND t.created_at >= $1 AND t.created_at <= $2
        WHERE u.role = 'technician' AND u.is_active
        GROUP BY u.id, u.first_name, u.last_name
        ORDER BY u.last_name`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TechnicianLoad
	for rows.Next() {
		var tl TechnicianLoad
		if err := rows.Scan(&tl.UserID, &tl.FullName, &tl.OpenCount, &tl.Resolved); err != nil {
			return nil, err
		}
		result = append(result, tl)
	}
	return result, rows.Err()
}

func (r *statisticsRepository) AverageResolutionHours(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0), 0)
        FROM tickets
        WHERE resolved_at IS NOT NULL AND created_at >= $1 AND created_at <= $2`
	var hours float64
	err := r.pool.QueryRow(ctx, query, from, to).Scan(&hours)
	return hours, err
}
