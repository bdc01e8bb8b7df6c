package model

import "time"

// Invite is an emailed invitation to join. The code is an opaque UUID the
// invitee presents back; acceptance creates the user and marks the invite
// accepted in the same transaction, so a code can only ever be consumed
// once.
type Invite struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"size:255;not null;index"`
	Code        string     `json:"-" gorm:"uniqueIndex;size:36;not null"`
	RoleID      uint       `json:"role_id" gorm:"not null"`
	InvitedByID uint       `json:"invited_by_id" gorm:"not null;index"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"not null"`
	Accepted    bool       `json:"accepted" gorm:"default:false;index"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Role      Role `json:"-" gorm:"foreignKey:RoleID"`
	InvitedBy User `json:"-" gorm:"foreignKey:InvitedByID"`
}
