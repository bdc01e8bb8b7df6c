package model

import "time"

// AuthType discriminates the two credential kinds.
type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeOpenID   AuthType = "openid"
)

// Credential is one authentication method bound to a user. A user may hold
// several (e.g. one password plus one OpenID), each independently
// activatable and soft-deletable.
//
// The two kinds are mutually exclusive: a password credential carries a hash
// and no provider, an OpenID credential carries provider+subject and no
// hash. The service layer rejects rows violating this before persistence;
// the unique indexes below make duplicate registrations lose the race at
// the store instead of in application code.
type Credential struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	UserID    uint     `json:"user_id" gorm:"not null;index"`
	AuthType  AuthType `json:"auth_type" gorm:"size:20;not null;uniqueIndex:idx_login_auth"`
	LoginName string   `json:"login_name" gorm:"size:255;not null;uniqueIndex:idx_login_auth"`

	PasswordHash      *string    `json:"-" gorm:"size:255"`
	PasswordExpired   bool       `json:"password_expired" gorm:"default:false"`
	PasswordRotatedAt *time.Time `json:"password_rotated_at,omitempty"`

	OpenIDProvider *string `json:"openid_provider,omitempty" gorm:"size:100;uniqueIndex:idx_openid"`
	OpenIDSubject  *string `json:"-" gorm:"size:255;uniqueIndex:idx_openid"`

	Active  bool `json:"active" gorm:"default:true;index"`
	Deleted bool `json:"-" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// IsPassword reports whether this is a password credential.
func (c *Credential) IsPassword() bool { return c.AuthType == AuthTypePassword }

// IsOpenID reports whether this is an OpenID credential.
func (c *Credential) IsOpenID() bool { return c.AuthType == AuthTypeOpenID }
