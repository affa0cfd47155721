package models

import "time"

// NotificationTargetAll addresses a notification to every user.
const NotificationTargetAll = "ALL"

// Notification is a message shown to one user or broadcast to all.
type Notification struct {
	ID           string    `json:"id"`
	TargetUserID string    `json:"target_user_id"`
	Message      string    `json:"message"`
	Date         time.Time `json:"date"`
	Read         bool      `json:"read"`
}
