package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/identity"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates the two login flows: employees sign in with their
// national ID plus employee code, the administrator with username and
// password.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// Login authenticates an employee. Inputs may arrive with Persian or Arabic
// digits; both are normalized before lookup so the stored ASCII values
// always match.
func (s *AuthService) Login(ctx context.Context, nationalID, employeeCode string) (*domain.User, string, time.Time, error) {
	normalizedID, err := identity.ValidateNationalID(nationalID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid national id", map[string]string{"national_id": err.Error()})
	}
	normalizedCode, err := identity.ValidateEmployeeCode(employeeCode)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("invalid employee code", map[string]string{"employee_code": err.Error()})
	}

	user, err := s.users.GetByNationalID(ctx, normalizedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.EmployeeCode != normalizedCode {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account disabled")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publishLogin(ctx, user)
	return user, token, exp, nil
}

// LoginAdmin authenticates the administrator account.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByAdminUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsAdmin || user.AdminPasswordHash == nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(*user.AdminPasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("account disabled")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// publishLogin tells subscribers an employee signed in. The notification
// service turns this into an alert for the IT manager.
func (s *AuthService) publishLogin(ctx context.Context, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserLoggedIn,
		ActorID:   user.ID,
		Timestamp: time.Now(),
		Payload: events.UserLoggedInPayload{
			UserName: user.FullName(),
			Role:     user.Role,
		},
	})
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
