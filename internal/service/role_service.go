package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// RoleService manages roles and their permission grants. Grants apply on the
// next request because nothing caches resolved permissions.
type RoleService interface {
	List(ctx context.Context) ([]model.Role, error)
	Get(ctx context.Context, id uint) (*model.Role, error)
	GrantPermission(ctx context.Context, roleID uint, code string) error
	RevokePermission(ctx context.Context, roleID uint, code string) error
}

type roleService struct {
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

// NewRoleService creates a role service.
func NewRoleService(roleRepo repository.RoleRepository, permissionRepo repository.PermissionRepository) RoleService {
	return &roleService{roleRepo: roleRepo, permissionRepo: permissionRepo}
}

func (s *roleService) List(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *roleService) Get(ctx context.Context, id uint) (*model.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

func (s *roleService) GrantPermission(ctx context.Context, roleID uint, code string) error {
	role, permission, err := s.lookup(ctx, roleID, code)
	if err != nil {
		return err
	}
	return s.roleRepo.AddPermission(ctx, role.ID, permission.ID)
}

func (s *roleService) RevokePermission(ctx context.Context, roleID uint, code string) error {
	role, permission, err := s.lookup(ctx, roleID, code)
	if err != nil {
		return err
	}
	return s.roleRepo.RemovePermission(ctx, role.ID, permission.ID)
}

func (s *roleService) lookup(ctx context.Context, roleID uint, code string) (*model.Role, *model.Permission, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("find role: %w", err)
	}

	permission, err := s.permissionRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("find permission: %w", err)
	}
	return role, permission, nil
}
