package dto

import "time"

// BranchRequest creates or updates a branch.
type BranchRequest struct {
	Name        string `json:"name"`
	BranchCode  string `json:"branch_code"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// BranchResponse is a branch projection.
type BranchResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BranchCode  string    `json:"branch_code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DepartmentRequest creates or updates a department.
type DepartmentRequest struct {
	Name              string  `json:"name"`
	Type              string  `json:"type,omitempty"`
	Description       string  `json:"description,omitempty"`
	IsActive          bool    `json:"is_active"`
	CanReceiveTickets bool    `json:"can_receive_tickets"`
	HasWarehouse      bool    `json:"has_warehouse"`
	IsServiceProvider bool    `json:"is_service_provider"`
	SupervisorID      *string `json:"supervisor_id,omitempty"`
	TicketResponderID *string `json:"ticket_responder_id,omitempty"`
	TaskCreatorID     *string `json:"task_creator_id,omitempty"`
	BranchID          *string `json:"branch_id,omitempty"`
}

// DepartmentResponse is a department projection.
type DepartmentResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	Description       string  `json:"description,omitempty"`
	IsActive          bool    `json:"is_active"`
	CanReceiveTickets bool    `json:"can_receive_tickets"`
	HasWarehouse      bool    `json:"has_warehouse"`
	IsServiceProvider bool    `json:"is_service_provider"`
	SupervisorID      *string `json:"supervisor_id,omitempty"`
	TicketResponderID *string `json:"ticket_responder_id,omitempty"`
	TaskCreatorID     *string `json:"task_creator_id,omitempty"`
	BranchID          *string `json:"branch_id,omitempty"`
}

// CategoryRequest creates or updates a ticket category.
type CategoryRequest struct {
	DepartmentID               string `json:"department_id"`
	Name                       string `json:"name"`
	Description                string `json:"description,omitempty"`
	RequiresSupervisorApproval bool   `json:"requires_supervisor_approval"`
	IsActive                   bool   `json:"is_active"`
}

// CategoryResponse is a ticket category projection.
type CategoryResponse struct {
	ID                         string `json:"id"`
	DepartmentID               string `json:"department_id"`
	Name                       string `json:"name"`
	Description                string `json:"description,omitempty"`
	RequiresSupervisorApproval bool   `json:"requires_supervisor_approval"`
	IsActive                   bool   `json:"is_active"`
}

// EmployeeRequest creates or updates an employee account.
type EmployeeRequest struct {
	FirstName               string   `json:"first_name"`
	LastName                string   `json:"last_name"`
	Email                   string   `json:"email,omitempty"`
	Phone                   string   `json:"phone,omitempty"`
	NationalID              string   `json:"national_id"`
	EmployeeCode            string   `json:"employee_code"`
	Role                    string   `json:"role,omitempty"`
	DepartmentRole          string   `json:"department_role,omitempty"`
	DepartmentID            *string  `json:"department_id,omitempty"`
	SupervisedDepartmentIDs []string `json:"supervised_department_ids,omitempty"`
	IsActive                bool     `json:"is_active"`
	AdminUsername           *string  `json:"admin_username,omitempty"`
	AdminPassword           *string  `json:"admin_password,omitempty"`
}
