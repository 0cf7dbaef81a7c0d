package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// EmailConfigRepository manages the single active SMTP settings row.
type EmailConfigRepository interface {
	GetActive(ctx context.Context) (*domain.EmailConfig, error)
	Save(ctx context.Context, cfg *domain.EmailConfig) error
}

type emailConfigRepository struct {
	pool *pgxpool.Pool
}

// NewEmailConfigRepository instantiates repository.
func NewEmailConfigRepository(pool *pgxpool.Pool) EmailConfigRepository {
	return &emailConfigRepository{pool: pool}
}

func (r *emailConfigRepository) GetActive(ctx context.Context) (*domain.EmailConfig, error) {
	const query = `
        SELECT id, host, port, username, password, use_tls, from_email, from_name, is_active,
               updated_by, created_at, updated_at
        FROM email_configs WHERE is_active=TRUE ORDER BY updated_at DESC LIMIT 1`
	var cfg domain.EmailConfig
	if err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.Host,
		&cfg.Port,
		&cfg.Username,
		&cfg.Password,
		&cfg.UseTLS,
		&cfg.FromEmail,
		&cfg.FromName,
		&cfg.IsActive,
		&cfg.UpdatedBy,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save deactivates any previous row and inserts the new configuration so the
// active settings always win while history is retained.
func (r *emailConfigRepository) Save(ctx context.Context, cfg *domain.EmailConfig) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE email_configs SET is_active=FALSE WHERE is_active=TRUE`); err != nil {
		return err
	}

	const query = `
        INSERT INTO email_configs (host, port, username, password, use_tls, from_email, from_name, is_active, updated_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.UseTLS,
		cfg.FromEmail,
		cfg.FromName,
		cfg.UpdatedBy,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return err
	}
	cfg.IsActive = true
	return tx.Commit(ctx)
}
