package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/identity"
	"github.com/pticket/helpdesk/internal/policy"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// OrgService administers branches, departments, ticket categories and
// employees.
type OrgService struct {
	users       repository.UserRepository
	branches    repository.BranchRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	mailer      Mailer
	logger      *zap.Logger
	bcryptCost  int
}

// OrgDependencies bundles repositories for the org service.
type OrgDependencies struct {
	UserRepo       repository.UserRepository
	BranchRepo     repository.BranchRepository
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	Mailer         Mailer
	Logger         *zap.Logger
	BcryptCost     int
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{
		users:       deps.UserRepo,
		branches:    deps.BranchRepo,
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		mailer:      deps.Mailer,
		logger:      logger,
		bcryptCost:  deps.BcryptCost,
	}
}

// BranchInput describes a branch create or update.
type BranchInput struct {
	Name        string
	BranchCode  string
	Description string
	IsActive    bool
}

// CreateBranch adds a branch. Branch codes are normalized to ASCII digits
// and must be unique.
func (s *OrgService) CreateBranch(ctx context.Context, actor *domain.User, input BranchInput) (*domain.Branch, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	name := strings.TrimSpace(input.Name)
	code := identity.NormalizeDigits(input.BranchCode)
	if name == "" || code == "" {
		return nil, apperrors.NewValidationError("branch name and code are required", nil)
	}

	branch := &domain.Branch{
		Name:        name,
		BranchCode:  code,
		Description: strings.TrimSpace(input.Description),
		IsActive:    input.IsActive,
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return branch, nil
}

// UpdateBranch edits a branch.
func (s *OrgService) UpdateBranch(ctx context.Context, actor *domain.User, branchID string, input BranchInput) (*domain.Branch, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	branch, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	branch.Name = strings.TrimSpace(input.Name)
	branch.BranchCode = identity.NormalizeDigits(input.BranchCode)
	branch.Description = strings.TrimSpace(input.Description)
	branch.IsActive = input.IsActive
	if err := s.branches.Update(ctx, branch); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return branch, nil
}

// ListBranches returns branches.
func (s *OrgService) ListBranches(ctx context.Context, activeOnly bool) ([]domain.Branch, error) {
	branches, err := s.branches.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return branches, nil
}

// DepartmentInput describes a department create or update.
type DepartmentInput struct {
	Name              string
	Type              domain.DepartmentType
	Description       string
	IsActive          bool
	CanReceiveTickets bool
	HasWarehouse      bool
	IsServiceProvider bool
	SupervisorID      *string
	TicketResponderID *string
	TaskCreatorID     *string
	BranchID          *string
}

// CreateDepartment adds a department.
func (s *OrgService) CreateDepartment(ctx context.Context, actor *domain.User, input DepartmentInput) (*domain.Department, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name is required", nil)
	}
	if input.Type == "" {
		input.Type = domain.DepartmentTypeEmployee
	}

	dept := &domain.Department{
		Name:              name,
		Type:              input.Type,
		Description:       strings.TrimSpace(input.Description),
		IsActive:          input.IsActive,
		CanReceiveTickets: input.CanReceiveTickets,
		HasWarehouse:      input.HasWarehouse,
		IsServiceProvider: input.IsServiceProvider,
		SupervisorID:      input.SupervisorID,
		TicketResponderID: input.TicketResponderID,
		TaskCreatorID:     input.TaskCreatorID,
		BranchID:          input.BranchID,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return dept, nil
}

// UpdateDepartment edits a department.
func (s *OrgService) UpdateDepartment(ctx context.Context, actor *domain.User, deptID string, input DepartmentInput) (*domain.Department, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	dept, err := s.departments.GetByID(ctx, deptID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	dept.Name = strings.TrimSpace(input.Name)
	if input.Type != "" {
		dept.Type = input.Type
	}
	dept.Description = strings.TrimSpace(input.Description)
	dept.IsActive = input.IsActive
	dept.CanReceiveTickets = input.CanReceiveTickets
	dept.HasWarehouse = input.HasWarehouse
	dept.IsServiceProvider = input.IsServiceProvider
	dept.SupervisorID = input.SupervisorID
	dept.TicketResponderID = input.TicketResponderID
	dept.TaskCreatorID = input.TaskCreatorID
	dept.BranchID = input.BranchID
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return dept, nil
}

// ListDepartments returns departments, optionally only those of one branch
// so the branch→department dropdown can cascade.
func (s *OrgService) ListDepartments(ctx context.Context, branchID *string, activeOnly bool) ([]domain.Department, error) {
	depts, err := s.departments.List(ctx, branchID, activeOnly)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return depts, nil
}

// TicketCategoryInput describes a ticket category create or update.
type TicketCategoryInput struct {
	DepartmentID               string
	Name                       string
	Description                string
	RequiresSupervisorApproval bool
	IsActive                   bool
}

// CreateTicketCategory adds a category under a department.
func (s *OrgService) CreateTicketCategory(ctx context.Context, actor *domain.User, input TicketCategoryInput) (*domain.TicketCategory, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name is required", nil)
	}
	if _, err := s.departments.GetByID(ctx, input.DepartmentID); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	cat := &domain.TicketCategory{
		DepartmentID:               input.DepartmentID,
		Name:                       name,
		Description:                strings.TrimSpace(input.Description),
		RequiresSupervisorApproval: input.RequiresSupervisorApproval,
		IsActive:                   input.IsActive,
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cat, nil
}

// UpdateTicketCategory edits a category. The department binding is fixed at
// creation.
func (s *OrgService) UpdateTicketCategory(ctx context.Context, actor *domain.User, categoryID string, input TicketCategoryInput) (*domain.TicketCategory, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	cat.Name = strings.TrimSpace(input.Name)
	cat.Description = strings.TrimSpace(input.Description)
	cat.RequiresSupervisorApproval = input.RequiresSupervisorApproval
	cat.IsActive = input.IsActive
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cat, nil
}

// ListTicketCategories returns the categories of a department. Open to any
// authenticated user so the ticket form can offer them.
func (s *OrgService) ListTicketCategories(ctx context.Context, departmentID string, activeOnly bool) ([]domain.TicketCategory, error) {
	cats, err := s.categories.ListByDepartment(ctx, departmentID, activeOnly)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return cats, nil
}

// ListTicketReceivers returns active departments that accept tickets, for
// the ticket creation form.
func (s *OrgService) ListTicketReceivers(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.ListTicketReceivers(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return depts, nil
}

// EmployeeInput describes an employee create or update. Identifier fields
// accept Persian or Arabic digits and are normalized before persisting.
type EmployeeInput struct {
	FirstName               string
	LastName                string
	Email                   string
	Phone                   string
	NationalID              string
	EmployeeCode            string
	Role                    domain.Role
	DepartmentRole          domain.DepartmentRole
	DepartmentID            *string
	SupervisedDepartmentIDs []string
	IsActive                bool
	AdminUsername           *string
	AdminPassword           *string
}

// CreateEmployee registers a new employee account.
func (s *OrgService) CreateEmployee(ctx context.Context, actor *domain.User, input EmployeeInput) (*domain.User, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	user := &domain.User{IsActive: input.IsActive}
	if err := s.applyEmployeeInput(user, input, actor); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if len(input.SupervisedDepartmentIDs) > 0 {
		if err := s.users.UpdateWithSupervision(ctx, user, input.SupervisedDepartmentIDs); err != nil {
			return nil, apperrors.ToDomainError(err)
		}
		user.SupervisedDepartmentIDs = input.SupervisedDepartmentIDs
	}
	return user, nil
}

// UpdateEmployee edits an employee. The user row and the supervised
// department set change in one transaction so a failed edit leaves both
// untouched.
func (s *OrgService) UpdateEmployee(ctx context.Context, actor *domain.User, userID string, input EmployeeInput) (*domain.User, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	user.IsActive = input.IsActive
	if err := s.applyEmployeeInput(user, input, actor); err != nil {
		return nil, err
	}
	if err := s.users.UpdateWithSupervision(ctx, user, input.SupervisedDepartmentIDs); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	user.SupervisedDepartmentIDs = input.SupervisedDepartmentIDs
	return user, nil
}

// DeactivateEmployee disables an account instead of deleting the row, so
// tickets and replies keep their author. The person is told by email that
// they can no longer sign in.
func (s *OrgService) DeactivateEmployee(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if actor != nil && actor.ID == userID {
		return nil, apperrors.NewValidationError("cannot deactivate your own account", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if !user.IsActive {
		return user, nil
	}
	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	if s.mailer != nil && user.Email != "" {
		subject := "غیرفعال شدن حساب کاربری"
		body := RenderRTLEmail(subject, []string{
			fmt.Sprintf("سلام %s،", user.FullName()),
			"حساب کاربری شما در سامانه پشتیبانی غیرفعال شد و امکان ورود ندارید.",
			"در صورت نیاز با مدیر فناوری اطلاعات تماس بگیرید.",
		})
		if err := s.mailer.Send(ctx, []string{user.Email}, subject, body); err != nil {
			s.logger.Warn("deactivation email failed",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// ListEmployees returns users matching the filter.
func (s *OrgService) ListEmployees(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if !policy.CanManageOrg(actor) {
		return nil, apperrors.NewForbidden("access denied")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return users, nil
}

// ListTechnicians returns active technicians, available to anyone who can
// see assignment dropdowns.
func (s *OrgService) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	techs, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return techs, nil
}

func (s *OrgService) applyEmployeeInput(user *domain.User, input EmployeeInput, actor *domain.User) error {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return apperrors.NewValidationError("first and last name are required", nil)
	}

	nationalID, err := identity.ValidateNationalID(input.NationalID)
	if err != nil {
		return apperrors.NewValidationError("invalid national id", map[string]string{"national_id": err.Error()})
	}
	employeeCode, err := identity.ValidateEmployeeCode(input.EmployeeCode)
	if err != nil {
		return apperrors.NewValidationError("invalid employee code", map[string]string{"employee_code": err.Error()})
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != "" {
		if phone, err = identity.ValidateMobile(phone); err != nil {
			return apperrors.NewValidationError("invalid mobile number", map[string]string{"phone": err.Error()})
		}
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	deptRole := input.DepartmentRole
	if deptRole == "" {
		deptRole = domain.DepartmentRoleEmployee
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = strings.TrimSpace(input.Email)
	user.Phone = phone
	user.NationalID = nationalID
	user.EmployeeCode = employeeCode
	user.Role = role
	user.DepartmentRole = deptRole
	user.DepartmentID = input.DepartmentID
	if actor != nil {
		user.AssignedByID = &actor.ID
	}

	if input.AdminUsername != nil {
		user.AdminUsername = input.AdminUsername
	}
	if input.AdminPassword != nil && *input.AdminPassword != "" {
		hash, err := auth.HashPassword(*input.AdminPassword, s.bcryptCost)
		if err != nil {
			return apperrors.NewInternalError("password hashing failed", err)
		}
		user.AdminPasswordHash = &hash
	}
	return nil
}
