package dto

import "time"

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TicketID  *string   `json:"ticket_id,omitempty"`
	TaskID    *string   `json:"task_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCountResponse carries the badge counter.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
