package model

import "time"

// Notification categories.
const (
	NotificationCategoryAlert   = "ALERT"
	NotificationCategoryTimeout = "TIMEOUT"
	NotificationCategoryReport  = "REPORT"
)

// Notification is a per-student alert record with read tracking.
type Notification struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
