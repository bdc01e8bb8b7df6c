package model

import "time"

// NotificationType tags what a notification is about; ReferenceID points at
// the subject row of that type.
type NotificationType string

const (
	NotificationCertificateExpiring NotificationType = "certificate_expiring"
	NotificationConnectionRequest   NotificationType = "connection_request"
	NotificationConnectionAccepted  NotificationType = "connection_accepted"
	NotificationInviteAccepted      NotificationType = "invite_accepted"
)

// Notification is a per-user message row.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	UserID      uint             `json:"user_id" gorm:"not null;index"`
	Type        NotificationType `json:"type" gorm:"size:50;not null"`
	Title       string           `json:"title" gorm:"size:255;not null"`
	Body        string           `json:"body" gorm:"type:text"`
	ReferenceID *uint            `json:"reference_id,omitempty"`
	Read        bool             `json:"read" gorm:"column:is_read;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
