package model

import "time"

// User represents an identity record. Users are soft-deleted by flipping the
// Deleted flag; rows are never removed by the application. The Active and
// Deleted flags are checked on every authenticated request, so deactivating
// a user takes effect on their next call regardless of token expiry.
type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FirstName string `json:"first_name" gorm:"size:100"`
	LastName  string `json:"last_name" gorm:"size:100"`
	Active    bool   `json:"active" gorm:"default:true;index"`
	Deleted   bool   `json:"-" gorm:"default:false;index"`
	RoleID    uint   `json:"role_id" gorm:"not null;index"`
	AvatarID  *uint  `json:"avatar_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Role        Role         `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Avatar      *File        `json:"-" gorm:"foreignKey:AvatarID"`
	Credentials []Credential `json:"-" gorm:"foreignKey:UserID"`
}

// FullName joins the name fields for display and email salutations.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
