package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// EmailSettingsHandler serves SMTP configuration management.
type EmailSettingsHandler struct {
	service *service.EmailSettingsService
}

// NewEmailSettingsHandler constructs handler.
func NewEmailSettingsHandler(settingsService *service.EmailSettingsService) *EmailSettingsHandler {
	return &EmailSettingsHandler{service: settingsService}
}

// Get GET /admin/email-settings.
func (h *EmailSettingsHandler) Get(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	cfg, err := h.service.Get(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": emailSettingsResponse(cfg)})
}

// Update PUT /admin/email-settings.
func (h *EmailSettingsHandler) Update(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.EmailSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cfg, err := h.service.Update(c.Context(), user, service.EmailSettingsInput{
		Host:      req.Host,
		Port:      req.Port,
		Username:  req.Username,
		Password:  req.Password,
		UseTLS:    req.UseTLS,
		FromEmail: req.FromEmail,
		FromName:  req.FromName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": emailSettingsResponse(cfg)})
}

// Test POST /admin/email-settings/test. Runs the SMTP handshake.
func (h *EmailSettingsHandler) Test(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if err := h.service.Test(c.Context(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
}

func emailSettingsResponse(cfg *domain.EmailConfig) dto.EmailSettingsResponse {
	return dto.EmailSettingsResponse{
		Host:      cfg.Host,
		Port:      cfg.Port,
		Username:  cfg.Username,
		UseTLS:    cfg.UseTLS,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		UpdatedAt: cfg.UpdatedAt,
	}
}
