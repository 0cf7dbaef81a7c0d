package domain

import "time"

// EmailConfig is the single database-backed SMTP configuration row. When no
// active row exists the mailer falls back to environment settings.
type EmailConfig struct {
	ID        string
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	FromEmail string
	FromName  string
	IsActive  bool
	UpdatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
