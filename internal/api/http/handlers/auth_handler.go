package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// AuthHandler serves login endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login. Employees sign in with national id and employee
// code; there is no password on this flow.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, expiresAt, err := h.service.Login(c.Context(), req.NationalID, req.EmployeeCode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserSummary(user),
	}})
}

// LoginAdmin POST /auth/admin/login.
func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, expiresAt, err := h.service.LoginAdmin(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserSummary(user),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": UserSummary(user)})
}

// UserSummary maps a user to its public projection. Shared by handlers that
// embed user data in their responses.
func UserSummary(user *domain.User) dto.UserSummary {
	return dto.UserSummary{
		ID:                      user.ID,
		FullName:                user.FullName(),
		Email:                   user.Email,
		Phone:                   user.Phone,
		NationalID:              user.NationalID,
		EmployeeCode:            user.EmployeeCode,
		Role:                    string(user.Role),
		DepartmentRole:          string(user.DepartmentRole),
		DepartmentID:            user.DepartmentID,
		SupervisedDepartmentIDs: user.SupervisedDepartmentIDs,
		IsActive:                user.IsActive,
		IsAdmin:                 user.IsAdmin,
	}
}
