package service

import (
	"context"
	"fmt"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// PermissionService resolves role grants. Every resolution reads the join
// table; there is no cache, so a permission edit is honored on the very next
// request at the cost of one query.
type PermissionService interface {
	ResolvePermissions(ctx context.Context, roleID uint) ([]string, error)
	ListCatalog(ctx context.Context) ([]model.Permission, error)
}

type permissionService struct {
	permissionRepo repository.PermissionRepository
}

// NewPermissionService creates a permission service.
func NewPermissionService(permissionRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permissionRepo: permissionRepo}
}

// ResolvePermissions returns the deduplicated permission codes granted to a
// role. An unknown role simply resolves to no permissions.
func (s *permissionService) ResolvePermissions(ctx context.Context, roleID uint) ([]string, error) {
	permissions, err := s.permissionRepo.ListByRoleID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("resolve role %d permissions: %w", roleID, err)
	}

	seen := make(map[string]struct{}, len(permissions))
	codes := make([]string, 0, len(permissions))
	for _, p := range permissions {
		if _, ok := seen[p.Code]; ok {
			continue
		}
		seen[p.Code] = struct{}{}
		codes = append(codes, p.Code)
	}
	return codes, nil
}

// ListCatalog returns every permission the service knows.
func (s *permissionService) ListCatalog(ctx context.Context) ([]model.Permission, error) {
	return s.permissionRepo.List(ctx)
}
