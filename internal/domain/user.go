package domain

import "time"

// Role enumerates system-wide user roles.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleTechnician Role = "technician"
	RoleITManager  Role = "it_manager"
)

// DepartmentRole enumerates a user's standing within the organization.
type DepartmentRole string

const (
	DepartmentRoleEmployee DepartmentRole = "employee"
	DepartmentRoleSenior   DepartmentRole = "senior"
	DepartmentRoleManager  DepartmentRole = "manager"
)

// User is the domain model for everyone who signs in: employees,
// technicians and the IT manager. Authentication uses the national ID plus
// employee code pair; both are stored normalized to ASCII digits.
type User struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	NationalID     string
	EmployeeCode   string
	Role           Role
	DepartmentRole DepartmentRole
	DepartmentID   *string
	// SupervisedDepartmentIDs lists departments this user supervises, the
	// union of the M2M set and any department pointing at the user via its
	// supervisor field.
	SupervisedDepartmentIDs []string
	AssignedByID            *string
	// AdminUsername/AdminPasswordHash back the separate admin-only login.
	AdminUsername     *string
	AdminPasswordHash *string
	IsActive          bool
	IsAdmin           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName returns the display name.
func (u *User) FullName() string {
	if u.IsAdmin {
		return "Administrator"
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

// Supervises reports whether the user supervises the given department.
func (u *User) Supervises(departmentID string) bool {
	if u.DepartmentRole != DepartmentRoleSenior && u.DepartmentRole != DepartmentRoleManager {
		return false
	}
	for _, id := range u.SupervisedDepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}
