package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// OrgHandler serves branch, department, category and employee administration.
type OrgHandler struct {
	service *service.OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService *service.OrgService) *OrgHandler {
	return &OrgHandler{service: orgService}
}

// CreateBranch POST /admin/branches.
func (h *OrgHandler) CreateBranch(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.CreateBranch(c.Context(), user, branchInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": branchResponse(branch)})
}

// UpdateBranch PUT /admin/branches/:id.
func (h *OrgHandler) UpdateBranch(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.UpdateBranch(c.Context(), user, c.Params("id"), branchInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// ListBranches GET /branches.
func (h *OrgHandler) ListBranches(c *fiber.Ctx) error {
	branches, err := h.service.ListBranches(c.Context(), c.QueryBool("active_only"))
	if err != nil {
		return err
	}
	items := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		items = append(items, branchResponse(&branches[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDepartment POST /admin/departments.
func (h *OrgHandler) CreateDepartment(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.CreateDepartment(c.Context(), user, departmentInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// UpdateDepartment PUT /admin/departments/:id.
func (h *OrgHandler) UpdateDepartment(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.UpdateDepartment(c.Context(), user, c.Params("id"), departmentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// ListDepartments GET /departments. An optional ?branch_id= narrows the
// list for the branch→department cascading dropdown.
func (h *OrgHandler) ListDepartments(c *fiber.Ctx) error {
	var branchID *string
	if v := c.Query("branch_id"); v != "" {
		branchID = &v
	}
	depts, err := h.service.ListDepartments(c.Context(), branchID, c.QueryBool("active_only"))
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		items = append(items, departmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTicketReceivers GET /departments/ticket-receivers.
func (h *OrgHandler) ListTicketReceivers(c *fiber.Ctx) error {
	depts, err := h.service.ListTicketReceivers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(depts))
	for i := range depts {
		items = append(items, departmentResponse(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /admin/categories.
func (h *OrgHandler) CreateCategory(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.CreateTicketCategory(c.Context(), user, categoryInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": categoryResponse(cat)})
}

// UpdateCategory PUT /admin/categories/:id.
func (h *OrgHandler) UpdateCategory(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.service.UpdateTicketCategory(c.Context(), user, c.Params("id"), categoryInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(cat)})
}

// ListCategories GET /departments/:id/categories.
func (h *OrgHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.service.ListTicketCategories(c.Context(), c.Params("id"), c.QueryBool("active_only"))
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		items = append(items, categoryResponse(&cats[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEmployee POST /admin/employees.
func (h *OrgHandler) CreateEmployee(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.CreateEmployee(c.Context(), user, employeeInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": UserSummary(created)})
}

// UpdateEmployee PUT /admin/employees/:id.
func (h *OrgHandler) UpdateEmployee(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.service.UpdateEmployee(c.Context(), user, c.Params("id"), employeeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": UserSummary(updated)})
}

// DeleteEmployee DELETE /admin/employees/:id deactivates the account.
func (h *OrgHandler) DeleteEmployee(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if _, err := h.service.DeactivateEmployee(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListEmployees GET /admin/employees.
func (h *OrgHandler) ListEmployees(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	filter := repository.UserFilter{ActiveOnly: c.QueryBool("active_only")}
	if deptID := c.Query("department_id"); deptID != "" {
		filter.DepartmentID = &deptID
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.Role(roleStr)
		filter.Role = &role
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	users, err := h.service.ListEmployees(c.Context(), user, filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		items = append(items, UserSummary(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListTechnicians GET /technicians.
func (h *OrgHandler) ListTechnicians(c *fiber.Ctx) error {
	techs, err := h.service.ListTechnicians(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(techs))
	for i := range techs {
		items = append(items, UserSummary(&techs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func branchInput(req dto.BranchRequest) service.BranchInput {
	return service.BranchInput{
		Name:        req.Name,
		BranchCode:  req.BranchCode,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
}

func branchResponse(branch *domain.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:          branch.ID,
		Name:        branch.Name,
		BranchCode:  branch.BranchCode,
		Description: branch.Description,
		IsActive:    branch.IsActive,
		CreatedAt:   branch.CreatedAt,
	}
}

func departmentInput(req dto.DepartmentRequest) service.DepartmentInput {
	return service.DepartmentInput{
		Name:              req.Name,
		Type:              domain.DepartmentType(req.Type),
		Description:       req.Description,
		IsActive:          req.IsActive,
		CanReceiveTickets: req.CanReceiveTickets,
		HasWarehouse:      req.HasWarehouse,
		IsServiceProvider: req.IsServiceProvider,
		SupervisorID:      req.SupervisorID,
		TicketResponderID: req.TicketResponderID,
		TaskCreatorID:     req.TaskCreatorID,
		BranchID:          req.BranchID,
	}
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:                dept.ID,
		Name:              dept.Name,
		Type:              string(dept.Type),
		Description:       dept.Description,
		IsActive:          dept.IsActive,
		CanReceiveTickets: dept.CanReceiveTickets,
		HasWarehouse:      dept.HasWarehouse,
		IsServiceProvider: dept.IsServiceProvider,
		SupervisorID:      dept.SupervisorID,
		TicketResponderID: dept.TicketResponderID,
		TaskCreatorID:     dept.TaskCreatorID,
		BranchID:          dept.BranchID,
	}
}

func categoryInput(req dto.CategoryRequest) service.TicketCategoryInput {
	return service.TicketCategoryInput{
		DepartmentID:               req.DepartmentID,
		Name:                       req.Name,
		Description:                req.Description,
		RequiresSupervisorApproval: req.RequiresSupervisorApproval,
		IsActive:                   req.IsActive,
	}
}

func categoryResponse(cat *domain.TicketCategory) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:                         cat.ID,
		DepartmentID:               cat.DepartmentID,
		Name:                       cat.Name,
		Description:                cat.Description,
		RequiresSupervisorApproval: cat.RequiresSupervisorApproval,
		IsActive:                   cat.IsActive,
	}
}

func employeeInput(req dto.EmployeeRequest) service.EmployeeInput {
	return service.EmployeeInput{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		Email:                   req.Email,
		Phone:                   req.Phone,
		NationalID:              req.NationalID,
		EmployeeCode:            req.EmployeeCode,
		Role:                    domain.Role(req.Role),
		DepartmentRole:          domain.DepartmentRole(req.DepartmentRole),
		DepartmentID:            req.DepartmentID,
		SupervisedDepartmentIDs: req.SupervisedDepartmentIDs,
		IsActive:                req.IsActive,
		AdminUsername:           req.AdminUsername,
		AdminPassword:           req.AdminPassword,
	}
}
