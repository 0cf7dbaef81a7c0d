package dto

import "time"

// CreateTaskRequest creates an internal task.
type CreateTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority,omitempty"`
	AssignedToID string     `json:"assigned_to_id"`
	DepartmentID *string    `json:"department_id,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// CreateTaskReplyRequest adds a message to a task conversation.
type CreateTaskReplyRequest struct {
	Content       string  `json:"content"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
}

// RequestExtensionRequest asks to push a task deadline.
type RequestExtensionRequest struct {
	RequestedDeadline time.Time `json:"requested_deadline"`
	Reason            string    `json:"reason"`
}

// DecideExtensionRequest resolves a pending extension request.
type DecideExtensionRequest struct {
	Approve bool `json:"approve"`
}

// TaskSummary is the list projection of a task.
type TaskSummary struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	CreatedByID    string     `json:"created_by_id"`
	AssignedToID   string     `json:"assigned_to_id"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Reminder8hSent bool       `json:"reminder_8h_sent"`
	Reminder2hSent bool       `json:"reminder_2h_sent"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// TaskDetailResponse is the full task view with its conversation.
type TaskDetailResponse struct {
	TaskSummary
	Description string              `json:"description"`
	Replies     []TaskReplyResponse `json:"replies"`
}

// TaskReplyResponse is one task conversation entry.
type TaskReplyResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Content       string    `json:"content"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExtensionResponse is one deadline extension request.
type ExtensionResponse struct {
	ID                string     `json:"id"`
	TaskID            string     `json:"task_id"`
	RequestedByID     string     `json:"requested_by_id"`
	RequestedDeadline time.Time  `json:"requested_deadline"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	DecidedByID       *string    `json:"decided_by_id,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
