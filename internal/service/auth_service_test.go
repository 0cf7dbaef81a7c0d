package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

func authTestConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
}

// 1234567891 and 1111111111 both satisfy the national ID checksum.
func employeeUser() *domain.User {
	return &domain.User{
		ID:           "user-1",
		FirstName:    "سارا",
		LastName:     "محمدی",
		NationalID:   "1234567891",
		EmployeeCode: "4821",
		Role:         domain.RoleEmployee,
		IsActive:     true,
	}
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.HTTPStatus != status {
		t.Fatalf("expected status %d, got %d (%s)", status, domainErr.HTTPStatus, domainErr.Message)
	}
}

func TestLoginNormalizesPersianDigits(t *testing.T) {
	users := newFakeUserRepo(employeeUser())
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	user, token, expires, err := svc.Login(context.Background(), "۱۲۳۴۵۶۷۸۹۱", "۴۸۲۱")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("wrong user: %s", user.ID)
	}
	if token == "" {
		t.Error("token must not be empty")
	}
	if !expires.After(time.Now()) {
		t.Error("expiry must be in the future")
	}
}

func TestLoginWrongEmployeeCode(t *testing.T) {
	users := newFakeUserRepo(employeeUser())
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	_, _, _, err := svc.Login(context.Background(), "1234567891", "9999")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestLoginUnknownNationalID(t *testing.T) {
	users := newFakeUserRepo(employeeUser())
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	_, _, _, err := svc.Login(context.Background(), "1111111111", "4821")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestLoginRejectsBadChecksum(t *testing.T) {
	users := newFakeUserRepo(employeeUser())
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	// Last digit off by one breaks the checksum.
	_, _, _, err := svc.Login(context.Background(), "1234567892", "4821")
	expectStatus(t, err, http.StatusBadRequest)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := employeeUser()
	user.IsActive = false
	users := newFakeUserRepo(user)
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	_, _, _, err := svc.Login(context.Background(), "1234567891", "4821")
	expectStatus(t, err, http.StatusUnauthorized)
}

func TestLoginAdmin(t *testing.T) {
	hash, err := auth.HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	admin := &domain.User{
		ID:                "admin-1",
		Role:              domain.RoleITManager,
		AdminUsername:     strPtr("admin"),
		AdminPasswordHash: &hash,
		IsActive:          true,
		IsAdmin:           true,
	}
	users := newFakeUserRepo(admin)
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	if _, _, _, err := svc.LoginAdmin(context.Background(), "admin", "wrong"); err == nil {
		t.Fatal("wrong password must be rejected")
	}

	user, token, _, err := svc.LoginAdmin(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if user.ID != "admin-1" || token == "" {
		t.Errorf("unexpected login result: %s", user.ID)
	}
}

func TestLoginAdminUnknownUsername(t *testing.T) {
	users := newFakeUserRepo(employeeUser())
	svc := NewAuthService(authTestConfig(), AuthDependencies{UserRepo: users})

	_, _, _, err := svc.LoginAdmin(context.Background(), "nobody", "whatever")
	expectStatus(t, err, http.StatusUnauthorized)
}
