package domain

import "time"

// NotificationType enumerates in-app notification kinds.
type NotificationType string

const (
	NotificationTicketCreated     NotificationType = "ticket_created"
	NotificationTicketAssigned    NotificationType = "ticket_assigned"
	NotificationTicketReplied     NotificationType = "ticket_replied"
	NotificationTicketStatus      NotificationType = "ticket_status_changed"
	NotificationApprovalRequested NotificationType = "approval_requested"
	NotificationApprovalDecided   NotificationType = "approval_decided"
	NotificationTaskAssigned      NotificationType = "task_assigned"
	NotificationTaskReplied       NotificationType = "task_replied"
	NotificationTaskStatus        NotificationType = "task_status_changed"
	NotificationTaskDeadline      NotificationType = "task_deadline"
	NotificationExtensionRequest  NotificationType = "extension_requested"
	NotificationExtensionDecided  NotificationType = "extension_decided"
	NotificationUserLogin         NotificationType = "user_login"
)

// Notification is a per-recipient in-app message, optionally linked to a
// ticket or task.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	TicketID    *string
	TaskID      *string
	IsRead      bool
	CreatedAt   time.Time
}
