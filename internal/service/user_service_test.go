package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

type userServiceDeps struct {
	users *MockUserRepository
	roles *MockRoleRepository
	files *MockFileRepository
}

func newUserServiceForTest() (UserService, *userServiceDeps) {
	d := &userServiceDeps{
		users: new(MockUserRepository),
		roles: new(MockRoleRepository),
		files: new(MockFileRepository),
	}
	return NewUserService(d.users, d.roles, d.files), d
}

func TestUserService_Get(t *testing.T) {
	t.Run("soft-deleted users are invisible", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, Deleted: true}, nil)

		_, err := svc.Get(context.Background(), 1)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Get(context.Background(), 1)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	t.Run("nil fields stay untouched", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{
			ID: 1, Email: "old@example.com", FirstName: "Old", LastName: "Name", Active: true,
		}, nil)
		d.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "old@example.com" && u.FirstName == "Fresh" && u.LastName == "Name"
		})).Return(nil)

		firstName := "Fresh"
		user, err := svc.Update(context.Background(), 1, UpdateUserInput{FirstName: &firstName})

		assert.NoError(t, err)
		assert.Equal(t, "Fresh", user.FirstName)
		assert.Equal(t, "old@example.com", user.Email)
		d.users.AssertExpectations(t)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, Email: "old@example.com", Active: true}, nil)
		d.users.On("Update", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		email := "taken@example.com"
		_, err := svc.Update(context.Background(), 1, UpdateUserInput{Email: &email})

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	t.Run("assigns the new role", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, RoleID: 2, Active: true}, nil)
		d.roles.On("FindByID", mock.Anything, uint(3)).
			Return(&model.Role{ID: 3, Name: "Auditor"}, nil)
		d.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.RoleID == 3
		})).Return(nil)

		user, err := svc.ChangeRole(context.Background(), 1, 3)

		assert.NoError(t, err)
		assert.Equal(t, uint(3), user.RoleID)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, RoleID: 2, Active: true}, nil)
		d.roles.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.ChangeRole(context.Background(), 1, 42)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestUserService_SetAvatar(t *testing.T) {
	t.Run("points at an owned upload", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, Active: true}, nil)
		d.files.On("FindByID", mock.Anything, uint(8)).
			Return(&model.File{ID: 8, OwnerID: 1}, nil)
		d.users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.AvatarID != nil && *u.AvatarID == 8
		})).Return(nil)

		user, err := svc.SetAvatar(context.Background(), 1, 8)

		assert.NoError(t, err)
		assert.Equal(t, uint(8), *user.AvatarID)
	})

	t.Run("someone else's file is off limits", func(t *testing.T) {
		svc, d := newUserServiceForTest()
		d.users.On("FindByID", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, Active: true}, nil)
		d.files.On("FindByID", mock.Anything, uint(8)).
			Return(&model.File{ID: 8, OwnerID: 99}, nil)

		_, err := svc.SetAvatar(context.Background(), 1, 8)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestUserService_SoftDelete(t *testing.T) {
	svc, d := newUserServiceForTest()
	d.users.On("FindByID", mock.Anything, uint(1)).
		Return(&model.User{ID: 1, Active: true}, nil)
	d.users.On("SoftDelete", mock.Anything, uint(1)).Return(nil)

	assert.NoError(t, svc.SoftDelete(context.Background(), 1))
	d.users.AssertExpectations(t)
}
