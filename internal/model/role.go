package model

import "time"

// Role is a named permission bundle. Every user has exactly one role;
// permissions attach to roles through the role_permissions join table and
// are re-read on every request, so edits apply immediately.
type Role struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description,omitempty" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
}

// PermissionCodes flattens the attached permissions to their codes,
// deduplicated, order-irrelevant.
func (r *Role) PermissionCodes() []string {
	seen := make(map[string]struct{}, len(r.Permissions))
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		if _, ok := seen[p.Code]; ok {
			continue
		}
		seen[p.Code] = struct{}{}
		codes = append(codes, p.Code)
	}
	return codes
}
