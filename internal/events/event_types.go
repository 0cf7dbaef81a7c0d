package events

import (
	"time"

	"github.com/pticket/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket_created"
	EventTicketStatusChanged     EventType = "ticket_status_changed"
	EventTicketPriorityChanged   EventType = "ticket_priority_changed"
	EventTicketAssigned          EventType = "ticket_assigned"
	EventTicketReplyAdded        EventType = "ticket_reply_added"
	EventTicketApprovalRequested EventType = "ticket_approval_requested"
	EventTicketApprovalDecided   EventType = "ticket_approval_decided"
	EventTaskCreated             EventType = "task_created"
	EventTaskStatusChanged       EventType = "task_status_changed"
	EventTaskReplyAdded          EventType = "task_reply_added"
	EventTaskDeadlineNear        EventType = "task_deadline_near"
	EventExtensionRequested      EventType = "extension_requested"
	EventExtensionDecided        EventType = "extension_decided"
	EventUserLoggedIn            EventType = "user_logged_in"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	TicketID  *string     `json:"ticket_id,omitempty"`
	TaskID    *string     `json:"task_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title              string                      `json:"title"`
	Priority           domain.TicketPriority       `json:"priority"`
	TargetDepartmentID *string                     `json:"target_department_id,omitempty"`
	ApprovalStatus     domain.AccessApprovalStatus `json:"approval_status"`
}

// StatusChangedPayload payload, shared by tickets and tasks.
type StatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// ReplyAddedPayload payload, shared by ticket and task replies.
type ReplyAddedPayload struct {
	ReplyID     string `json:"reply_id"`
	AuthorID    string `json:"author_id"`
	IsPrivate   bool   `json:"is_private"`
	BodyPreview string `json:"body_preview"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	Decision domain.AccessApprovalStatus `json:"decision"`
	Note     string                      `json:"note,omitempty"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	Title      string                `json:"title"`
	Priority   domain.TicketPriority `json:"priority"`
	AssigneeID string                `json:"assignee_id"`
	Deadline   *time.Time            `json:"deadline,omitempty"`
}

// DeadlineNearPayload payload emitted by the reminder worker.
type DeadlineNearPayload struct {
	Window    string    `json:"window"`
	Deadline  time.Time `json:"deadline"`
	Remaining string    `json:"remaining"`
}

// ExtensionPayload payload for extension request and decision events.
type ExtensionPayload struct {
	RequestID         string                 `json:"request_id"`
	RequestedDeadline time.Time              `json:"requested_deadline"`
	Status            domain.ExtensionStatus `json:"status"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	UserName string      `json:"user_name"`
	Role     domain.Role `json:"role"`
}
