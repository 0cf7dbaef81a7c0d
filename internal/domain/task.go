package domain

import "time"

// TicketTask is the parallel task-tracking flow: work items created by the
// IT manager or a department task creator and assigned to an employee, with
// an optional deadline and two one-shot reminder flags.
type TicketTask struct {
	ID           string
	Title        string
	Description  string
	Priority     TicketPriority
	Status       TicketStatus
	CreatedByID  string
	AssignedToID string
	DepartmentID *string
	Deadline     *time.Time
	// Reminder8hSent and Reminder2hSent make each deadline reminder window
	// fire at most once per task.
	Reminder8hSent bool
	Reminder2hSent bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}

// TaskReply is a message in a task conversation.
type TaskReply struct {
	ID            string
	TaskID        string
	AuthorID      string
	Content       string
	AttachmentKey *string
	CreatedAt     time.Time
}

// ExtensionStatus tracks a deadline extension request.
type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
)

// DeadlineExtensionRequest is an assignee's request to push a task deadline.
// Approval replaces the task deadline and re-arms both reminder flags.
type DeadlineExtensionRequest struct {
	ID                string
	TaskID            string
	RequestedByID     string
	RequestedDeadline time.Time
	Reason            string
	Status            ExtensionStatus
	DecidedByID       *string
	DecidedAt         *time.Time
	CreatedAt         time.Time
}
