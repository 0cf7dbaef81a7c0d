package dto

import "time"

// CreateTicketRequest opens a new ticket.
type CreateTicketRequest struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	CategoryID         *string `json:"category_id,omitempty"`
	Category           string  `json:"category,omitempty"`
	Priority           string  `json:"priority,omitempty"`
	TargetDepartmentID *string `json:"target_department_id,omitempty"`
	BranchID           *string `json:"branch_id,omitempty"`
	AttachmentKey      *string `json:"attachment_key,omitempty"`
}

// CreateReplyRequest adds a message to a ticket conversation.
type CreateReplyRequest struct {
	Content       string  `json:"content"`
	IsPrivate     bool    `json:"is_private,omitempty"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
}

// UpdateStatusRequest moves a ticket or task to a new status.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// UpdatePriorityRequest changes a ticket priority.
type UpdatePriorityRequest struct {
	Priority string `json:"priority"`
}

// AssignRequest hands a ticket to a technician.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// DecideAccessRequest resolves a pending access approval.
type DecideAccessRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

// TicketSummary is the list projection of a ticket.
type TicketSummary struct {
	ID                   string     `json:"id"`
	ExternalKey          string     `json:"external_key"`
	Title                string     `json:"title"`
	Category             string     `json:"category,omitempty"`
	CategoryID           *string    `json:"category_id,omitempty"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	AccessApprovalStatus string     `json:"access_approval_status"`
	CreatedByID          string     `json:"created_by_id"`
	AssignedToID         *string    `json:"assigned_to_id,omitempty"`
	TargetDepartmentID   *string    `json:"target_department_id,omitempty"`
	BranchID             *string    `json:"branch_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
}

// TicketDetailResponse is the full ticket view with its conversation.
type TicketDetailResponse struct {
	TicketSummary
	Description   string          `json:"description"`
	AttachmentKey *string         `json:"attachment_key,omitempty"`
	Replies       []ReplyResponse `json:"replies"`
}

// ReplyResponse is one conversation entry. Private replies the caller may
// only know about arrive masked, with the content withheld.
type ReplyResponse struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Content       string    `json:"content"`
	IsPrivate     bool      `json:"is_private"`
	Masked        bool      `json:"masked,omitempty"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ActivityLogResponse is one history entry on a ticket or task.
type ActivityLogResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
