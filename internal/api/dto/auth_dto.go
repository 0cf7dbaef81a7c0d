package dto

import "time"

// LoginRequest is the employee login payload. Identifiers may arrive in
// Persian or Arabic digits.
type LoginRequest struct {
	NationalID   string `json:"national_id"`
	EmployeeCode string `json:"employee_code"`
}

// AdminLoginRequest is the separate username and password admin login.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the authenticated profile.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID                      string   `json:"id"`
	FullName                string   `json:"full_name"`
	Email                   string   `json:"email,omitempty"`
	Phone                   string   `json:"phone,omitempty"`
	NationalID              string   `json:"national_id,omitempty"`
	EmployeeCode            string   `json:"employee_code,omitempty"`
	Role                    string   `json:"role"`
	DepartmentRole          string   `json:"department_role,omitempty"`
	DepartmentID            *string  `json:"department_id,omitempty"`
	SupervisedDepartmentIDs []string `json:"supervised_department_ids,omitempty"`
	IsActive                bool     `json:"is_active"`
	IsAdmin                 bool     `json:"is_admin,omitempty"`
}
