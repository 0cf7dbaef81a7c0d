package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets and tasks.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "open"
	TicketStatusInProgress     TicketStatus = "in_progress"
	TicketStatusWaitingForUser TicketStatus = "waiting_for_user"
	TicketStatusResolved       TicketStatus = "resolved"
	TicketStatusClosed         TicketStatus = "closed"
)

// Persian returns the user-facing Persian label for the status, used in
// notification text and outbound email.
func (s TicketStatus) Persian() string {
	switch s {
	case TicketStatusOpen:
		return "باز"
	case TicketStatusInProgress:
		return "در حال انجام"
	case TicketStatusWaitingForUser:
		return "در انتظار کاربر"
	case TicketStatusResolved:
		return "حل شده"
	case TicketStatusClosed:
		return "بسته شده"
	default:
		return string(s)
	}
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// LegacyCategory is the original fixed category enum, kept for tickets
// created before department-scoped categories existed.
type LegacyCategory string

const (
	CategoryHardware LegacyCategory = "hardware"
	CategorySoftware LegacyCategory = "software"
	CategoryNetwork  LegacyCategory = "network"
	CategoryAccess   LegacyCategory = "access"
	CategoryOther    LegacyCategory = "other"
)

// AccessApprovalStatus tracks the supervisor sign-off gate for tickets in
// categories that require approval.
type AccessApprovalStatus string

const (
	AccessApprovalNotRequired AccessApprovalStatus = "not_required"
	AccessApprovalPending     AccessApprovalStatus = "pending"
	AccessApprovalApproved    AccessApprovalStatus = "approved"
	AccessApprovalRejected    AccessApprovalStatus = "rejected"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                   string
	ExternalKey          string
	Title                string
	Description          string
	Category             LegacyCategory
	CategoryID           *string
	Priority             TicketPriority
	Status               TicketStatus
	AccessApprovalStatus AccessApprovalStatus
	CreatedByID          string
	AssignedToID         *string
	BranchID             *string
	TargetDepartmentID   *string
	AttachmentKey        *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ResolvedAt           *time.Time
}

// Reply belongs to a ticket conversation. Private replies carry restricted
// visibility: full content only for the author, the ticket creator, general
// managers and the IT manager.
type Reply struct {
	ID            string
	TicketID      string
	AuthorID      string
	Content       string
	IsPrivate     bool
	AttachmentKey *string
	CreatedAt     time.Time
}
