package service

import (
	"context"
	"strings"

	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/policy"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// EmailSettingsService manages the database-backed SMTP configuration.
type EmailSettingsService struct {
	configs repository.EmailConfigRepository
	mailer  Mailer
}

// NewEmailSettingsService constructs the service.
func NewEmailSettingsService(configs repository.EmailConfigRepository, mailer Mailer) *EmailSettingsService {
	return &EmailSettingsService{configs: configs, mailer: mailer}
}

// EmailSettingsInput describes an SMTP settings update.
type EmailSettingsInput struct {
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	FromEmail string
	FromName  string
}

// Get returns the active settings with the password blanked.
func (s *EmailSettingsService) Get(ctx context.Context, actor *domain.User) (*domain.EmailConfig, error) {
	if !policy.CanManageEmailConfig(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	cfg, err := s.configs.GetActive(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cfg.Password = ""
	return cfg, nil
}

// Update replaces the active SMTP settings.
func (s *EmailSettingsService) Update(ctx context.Context, actor *domain.User, input EmailSettingsInput) (*domain.EmailConfig, error) {
	if !policy.CanManageEmailConfig(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	host := strings.TrimSpace(input.Host)
	fromEmail := strings.TrimSpace(input.FromEmail)
	if host == "" || fromEmail == "" {
		return nil, apperrors.NewValidationError("host and from address are required", nil)
	}
	port := input.Port
	if port <= 0 {
		port = 587
	}

	cfg := &domain.EmailConfig{
		Host:      host,
		Port:      port,
		Username:  strings.TrimSpace(input.Username),
		Password:  input.Password,
		UseTLS:    input.UseTLS,
		FromEmail: fromEmail,
		FromName:  strings.TrimSpace(input.FromName),
		UpdatedBy: &actor.ID,
	}
	if err := s.configs.Save(ctx, cfg); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cfg.Password = ""
	return cfg, nil
}

// Test runs the SMTP handshake against the active settings.
func (s *EmailSettingsService) Test(ctx context.Context, actor *domain.User) error {
	if !policy.CanManageEmailConfig(actor) {
		return apperrors.NewForbidden("access denied")
	}
	return s.mailer.TestConnection(ctx)
}
