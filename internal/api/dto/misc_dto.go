package dto

import "time"

// CalendarDayResponse pairs a Gregorian date with its Jalali form.
type CalendarDayResponse struct {
	Gregorian   string   `json:"gregorian"`
	JalaliYear  int      `json:"jalali_year"`
	JalaliMonth int      `json:"jalali_month"`
	JalaliDay   int      `json:"jalali_day"`
	Jalali      string   `json:"jalali"`
	IsHoliday   bool     `json:"is_holiday"`
	Events      []string `json:"events,omitempty"`
}

// EmailSettingsRequest updates the SMTP configuration.
type EmailSettingsRequest struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	UseTLS    bool   `json:"use_tls"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name,omitempty"`
}

// EmailSettingsResponse echoes the active SMTP settings, password excluded.
type EmailSettingsResponse struct {
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Username  string    `json:"username,omitempty"`
	UseTLS    bool      `json:"use_tls"`
	FromEmail string    `json:"from_email"`
	FromName  string    `json:"from_name,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttachmentUploadResponse returns the storage key of an uploaded file.
type AttachmentUploadResponse struct {
	Key string `json:"key"`
}

// StatisticsResponse is the aggregate report.
type StatisticsResponse struct {
	From                  time.Time            `json:"from"`
	To                    time.Time            `json:"to"`
	TotalTickets          int                  `json:"total_tickets"`
	OpenTickets           int                  `json:"open_tickets"`
	ResolvedOrClosedCount int                  `json:"resolved_or_closed"`
	AvgResolutionHours    float64              `json:"avg_resolution_hours"`
	ByStatus              map[string]int       `json:"by_status"`
	ByPriority            map[string]int       `json:"by_priority"`
	ByDepartment          []DepartmentCountDTO `json:"by_department"`
	Technicians           []TechnicianLoadDTO  `json:"technicians"`
}

// DepartmentCountDTO is one department row in the report.
type DepartmentCountDTO struct {
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Count          int    `json:"count"`
}

// TechnicianLoadDTO is one technician row in the report.
type TechnicianLoadDTO struct {
	TechnicianID string `json:"technician_id"`
	FullName     string `json:"full_name"`
	OpenCount    int    `json:"open"`
	Resolved     int    `json:"resolved"`
}
