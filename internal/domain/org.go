package domain

import "time"

// Branch is a physical location. Branch codes are globally unique.
type Branch struct {
	ID          string
	Name        string
	BranchCode  string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentType separates ordinary employee departments from technical ones.
type DepartmentType string

const (
	DepartmentTypeEmployee   DepartmentType = "employee"
	DepartmentTypeTechnician DepartmentType = "technician"
)

// Department is an organizational unit. Three member designations matter
// for ticket routing: the supervisor oversees the department, the ticket
// responder may act on tickets routed to it, and the task creator may
// create and assign tasks within it.
type Department struct {
	ID                string
	Name              string
	Type              DepartmentType
	Description       string
	IsActive          bool
	CanReceiveTickets bool
	HasWarehouse      bool
	IsServiceProvider bool
	SupervisorID      *string
	TicketResponderID *string
	TaskCreatorID     *string
	BranchID          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TicketCategory is a department-scoped category. Categories flagged
// RequiresSupervisorApproval gate new tickets behind the access-approval
// flow.
type TicketCategory struct {
	ID                         string
	DepartmentID               string
	Name                       string
	Description                string
	RequiresSupervisorApproval bool
	IsActive                   bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}
