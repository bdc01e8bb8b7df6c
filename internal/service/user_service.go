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

// UpdateUserInput carries a partial profile update; nil fields are left
// untouched.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// UserService exposes user account operations. Reads are never cached:
// account state feeds authorization decisions elsewhere, so what this
// service returns must match the store.
type UserService interface {
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error)
	// ChangeRole reassigns a user's role. The new grants apply on the
	// user's next request; outstanding tokens are not recalled.
	ChangeRole(ctx context.Context, id, roleID uint) (*model.User, error)
	SoftDelete(ctx context.Context, id uint) error
	SetAvatar(ctx context.Context, userID, fileID uint) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	fileRepo repository.FileRepository
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, fileRepo repository.FileRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo, fileRepo: fileRepo}
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	return s.findLive(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error) {
	user, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, mapDuplicate(err, "email already registered")
	}
	return user, nil
}

func (s *userService) ChangeRole(ctx context.Context, id, roleID uint) (*model.User, error) {
	user, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("role does not exist")
		}
		return nil, fmt.Errorf("find role: %w", err)
	}

	user.RoleID = roleID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return user, nil
}

func (s *userService) SoftDelete(ctx context.Context, id uint) error {
	if _, err := s.findLive(ctx, id); err != nil {
		return err
	}
	return s.userRepo.SoftDelete(ctx, id)
}

// SetAvatar points the user at an uploaded file they own.
func (s *userService) SetAvatar(ctx context.Context, userID, fileID uint) (*model.User, error) {
	user, err := s.findLive(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	if file.OwnerID != userID {
		return nil, apperrors.ErrForbidden
	}

	user.AvatarID = &file.ID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	return user, nil
}

func (s *userService) findLive(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Deleted {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}
