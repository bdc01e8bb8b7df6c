package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the per-entity repositories bound to one DB handle.
// Registration and invite acceptance write several entities atomically, so
// the transaction boundary lives here rather than on any single repository.
type Repositories struct {
	Users         UserRepository
	Credentials   CredentialRepository
	Roles         RoleRepository
	Permissions   PermissionRepository
	Certificates  CertificateRepository
	Jurisdictions JurisdictionRepository
	Connections   ConnectionRepository
	Invites       InviteRepository
	Notifications NotificationRepository
	Files         FileRepository

	db *gorm.DB
}

// TxManager runs a function inside a single store transaction, handing it
// repositories bound to that transaction. Any error rolls back every write.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}

// NewRepositories wires GORM-backed repositories over db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Credentials:   NewCredentialRepository(db),
		Roles:         NewRoleRepository(db),
		Permissions:   NewPermissionRepository(db),
		Certificates:  NewCertificateRepository(db),
		Jurisdictions: NewJurisdictionRepository(db),
		Connections:   NewConnectionRepository(db),
		Invites:       NewInviteRepository(db),
		Notifications: NewNotificationRepository(db),
		Files:         NewFileRepository(db),
		db:            db,
	}
}

// WithTransaction implements TxManager.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
