package domain

import "time"

// ActivityAction enumerates logged mutations.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityUpdated         ActivityAction = "updated"
	ActivityStatusChanged   ActivityAction = "status_changed"
	ActivityPriorityChanged ActivityAction = "priority_changed"
	ActivityAssigned        ActivityAction = "assigned"
	ActivityReplied         ActivityAction = "replied"
	ActivityApproved        ActivityAction = "approved"
	ActivityRejected        ActivityAction = "rejected"
)

// ActivityLog records who changed what on a ticket or task. Field-level
// changes carry the before and after values for the audit trail.
type ActivityLog struct {
	ID        string
	ActorID   string
	Action    ActivityAction
	TicketID  *string
	TaskID    *string
	Field     string
	OldValue  string
	NewValue  string
	Note      string
	CreatedAt time.Time
}
