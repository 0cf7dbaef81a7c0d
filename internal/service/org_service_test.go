package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/domain"
)

type orgFixture struct {
	svc    *OrgService
	users  *fakeUserRepo
	mailer *fakeMailer

	admin    *domain.User
	employee *domain.User
}

func newOrgFixture() *orgFixture {
	f := &orgFixture{
		mailer: &fakeMailer{},
		admin:  &domain.User{ID: "mgr-1", Role: domain.RoleITManager, IsActive: true},
		employee: &domain.User{
			ID:           "emp-1",
			FirstName:    "سارا",
			LastName:     "محمدی",
			Email:        "sara@example.com",
			NationalID:   "1234567891",
			EmployeeCode: "4821",
			Role:         domain.RoleEmployee,
			IsActive:     true,
		},
	}
	f.users = newFakeUserRepo(f.admin, f.employee)
	f.svc = NewOrgService(OrgDependencies{
		UserRepo:   f.users,
		BranchRepo: newFakeBranchRepo(),
		DepartmentRepo: newFakeDepartmentRepo(
			&domain.Department{ID: "d1", Name: "اداری", IsActive: true, BranchID: strPtr("branch-1")},
			&domain.Department{ID: "d2", Name: "مالی", IsActive: true, BranchID: strPtr("branch-2")},
			&domain.Department{ID: "d3", Name: "بایگانی", IsActive: false, BranchID: strPtr("branch-1")},
		),
		CategoryRepo: newFakeCategoryRepo(),
		Mailer:       f.mailer,
		Logger:       zap.NewNop(),
		BcryptCost:   4,
	})
	return f
}

func TestDeactivateEmployeeDisablesAndEmails(t *testing.T) {
	f := newOrgFixture()

	user, err := f.svc.DeactivateEmployee(context.Background(), f.admin, "emp-1")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if user.IsActive {
		t.Error("account must be inactive")
	}
	stored, _ := f.users.GetByID(context.Background(), "emp-1")
	if stored.IsActive {
		t.Error("deactivation must be persisted")
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.mailer.sent))
	}
	mail := f.mailer.sent[0]
	if mail.To[0] != "sara@example.com" {
		t.Errorf("email went to %v", mail.To)
	}
	if !strings.Contains(mail.Body, "غیرفعال") {
		t.Error("email must explain the account is disabled")
	}
}

func TestDeactivateEmployeeIdempotent(t *testing.T) {
	f := newOrgFixture()
	f.employee.IsActive = false

	if _, err := f.svc.DeactivateEmployee(context.Background(), f.admin, "emp-1"); err != nil {
		t.Fatalf("deactivating an inactive account: %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Error("no email for an already inactive account")
	}
}

func TestDeactivateEmployeeGuards(t *testing.T) {
	f := newOrgFixture()

	_, err := f.svc.DeactivateEmployee(context.Background(), f.employee, "mgr-1")
	expectStatus(t, err, http.StatusForbidden)

	_, err = f.svc.DeactivateEmployee(context.Background(), f.admin, f.admin.ID)
	expectStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.DeactivateEmployee(context.Background(), f.admin, "ghost")
	expectStatus(t, err, http.StatusNotFound)
}

func TestListDepartmentsFiltersByBranch(t *testing.T) {
	f := newOrgFixture()

	depts, err := f.svc.ListDepartments(context.Background(), strPtr("branch-1"), false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(depts) != 2 {
		t.Fatalf("branch-1 has two departments, got %d", len(depts))
	}
	for _, dept := range depts {
		if dept.BranchID == nil || *dept.BranchID != "branch-1" {
			t.Errorf("foreign department leaked: %+v", dept)
		}
	}

	depts, err = f.svc.ListDepartments(context.Background(), strPtr("branch-1"), true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(depts) != 1 || depts[0].ID != "d1" {
		t.Errorf("active filter must drop the archived department, got %+v", depts)
	}

	depts, err = f.svc.ListDepartments(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(depts) != 3 {
		t.Errorf("nil branch means every department, got %d", len(depts))
	}
}
