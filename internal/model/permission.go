package model

import "time"

// PermissionAction names what a permission allows on its feature.
type PermissionAction string

const (
	ActionView   PermissionAction = "VIEW"
	ActionCreate PermissionAction = "CREATE"
	ActionUpdate PermissionAction = "UPDATE"
	ActionDelete PermissionAction = "DELETE"
	ActionManage PermissionAction = "MANAGE"
)

// Permission is a single allowed action, identified by a globally unique
// code such as "CREATE_USER". Codes are derived from action and feature.
type Permission struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	Code    string           `json:"code" gorm:"uniqueIndex;size:100;not null"`
	Feature string           `json:"feature" gorm:"size:50;not null;index"`
	Action  PermissionAction `json:"action" gorm:"size:20;not null"`

	CreatedAt time.Time `json:"created_at"`
}

// Well-known permission codes checked by route gates.
const (
	PermViewUser            = "VIEW_USER"
	PermCreateUser          = "CREATE_USER"
	PermUpdateUser          = "UPDATE_USER"
	PermDeleteUser          = "DELETE_USER"
	PermViewCertificate     = "VIEW_CERTIFICATE"
	PermCreateCertificate   = "CREATE_CERTIFICATE"
	PermUpdateCertificate   = "UPDATE_CERTIFICATE"
	PermDeleteCertificate   = "DELETE_CERTIFICATE"
	PermManageJurisdictions = "MANAGE_JURISDICTIONS"
	PermViewInvite          = "VIEW_INVITE"
	PermCreateInvite        = "CREATE_INVITE"
	PermViewReports         = "VIEW_REPORTS"
	PermManageRoles         = "MANAGE_ROLES"
)
