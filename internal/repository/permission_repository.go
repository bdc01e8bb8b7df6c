package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// PermissionRepository defines permission persistence operations.
type PermissionRepository interface {
	Create(ctx context.Context, permission *model.Permission) error
	FindByCode(ctx context.Context, code string) (*model.Permission, error)
	List(ctx context.Context) ([]model.Permission, error)
	// ListByRoleID reads the permissions granted to a role through the
	// role_permissions join. Always hits the store: permission edits must be
	// visible on the next request.
	ListByRoleID(ctx context.Context, roleID uint) ([]model.Permission, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository builds a GORM-backed repository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, permission *model.Permission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

func (r *permissionRepository) FindByCode(ctx context.Context, code string) (*model.Permission, error) {
	var permission model.Permission
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *permissionRepository) List(ctx context.Context) ([]model.Permission, error) {
	var permissions []model.Permission
	if err := r.db.WithContext(ctx).Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *permissionRepository) ListByRoleID(ctx context.Context, roleID uint) ([]model.Permission, error) {
	var permissions []model.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Find(&permissions).Error
	if err != nil {
		return nil, err
	}
	return permissions, nil
}
