package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

type inviteServiceDeps struct {
	invites       *MockInviteRepository
	users         *MockUserRepository
	roles         *MockRoleRepository
	permissions   *MockPermissionRepository
	credentials   *MockCredentialRepository
	notifications *MockNotificationRepository
	mail          *MockMailer
	jwt           *auth.JWTService
}

func newInviteServiceForTest() (InviteService, *inviteServiceDeps) {
	d := &inviteServiceDeps{
		invites:       new(MockInviteRepository),
		users:         new(MockUserRepository),
		roles:         new(MockRoleRepository),
		permissions:   new(MockPermissionRepository),
		credentials:   new(MockCredentialRepository),
		notifications: new(MockNotificationRepository),
		mail:          new(MockMailer),
		jwt:           auth.NewJWTService("test-secret", time.Hour, 15*time.Minute),
	}
	txm := &txManagerStub{repos: &repository.Repositories{
		Users:         d.users,
		Credentials:   d.credentials,
		Invites:       d.invites,
		Notifications: d.notifications,
	}}
	svc := NewInviteService(
		txm,
		d.invites,
		d.users,
		d.roles,
		NewPermissionService(d.permissions),
		d.jwt,
		d.mail,
		testAppBaseURL,
	)
	return svc, d
}

func TestInviteService_Create(t *testing.T) {
	t.Run("records the invite and mails the link", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.users.On("FindActiveByID", mock.Anything, uint(1)).Return(memberUser(1, "boss@example.com"), nil)
		d.roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2, Name: "Member"}, nil)
		d.users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		d.invites.On("Create", mock.Anything, mock.AnythingOfType("*model.Invite")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Invite).ID = 6 }).
			Return(nil)
		var inviteURL string
		d.mail.On("SendInvite", "new@example.com", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { inviteURL = args.String(2) }).
			Return()

		invite, err := svc.Create(context.Background(), 1, "new@example.com", 2)

		assert.NoError(t, err)
		assert.NotNil(t, invite)
		_, err = uuid.Parse(invite.Code)
		assert.NoError(t, err, "invite code should be an opaque UUID")
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), invite.ExpiresAt, time.Minute)
		assert.Contains(t, inviteURL, invite.Code)
		d.mail.AssertExpectations(t)
	})

	t.Run("already registered email conflicts", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.users.On("FindActiveByID", mock.Anything, uint(1)).Return(memberUser(1, "boss@example.com"), nil)
		d.roles.On("FindByID", mock.Anything, uint(2)).Return(&model.Role{ID: 2}, nil)
		d.users.On("FindByEmail", mock.Anything, "taken@example.com").
			Return(memberUser(9, "taken@example.com"), nil)

		_, err := svc.Create(context.Background(), 1, "taken@example.com", 2)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.users.On("FindActiveByID", mock.Anything, uint(1)).Return(memberUser(1, "boss@example.com"), nil)
		d.roles.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Create(context.Background(), 1, "new@example.com", 42)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestInviteService_Accept(t *testing.T) {
	pendingInvite := func() *model.Invite {
		return &model.Invite{
			ID:          6,
			Email:       "new@example.com",
			Code:        "11111111-2222-3333-4444-555555555555",
			RoleID:      testDefaultRoleID,
			InvitedByID: 1,
			ExpiresAt:   time.Now().Add(24 * time.Hour),
		}
	}
	in := AcceptInviteInput{
		Code:      "11111111-2222-3333-4444-555555555555",
		Password:  "password123",
		FirstName: "New",
		LastName:  "Joiner",
		LoginName: "newjoiner",
	}

	t.Run("registers the invitee and consumes the code", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		invite := pendingInvite()
		d.invites.On("FindByCode", mock.Anything, in.Code).Return(invite, nil)
		d.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			// Email and role come from the invite, never from the caller.
			return u.Email == "new@example.com" && u.RoleID == testDefaultRoleID
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 12
		}).Return(nil)
		d.credentials.On("Create", mock.Anything, mock.AnythingOfType("*model.Credential")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Credential).ID = 40 }).
			Return(nil)
		d.invites.On("Update", mock.Anything, mock.MatchedBy(func(i *model.Invite) bool {
			return i.Accepted && i.AcceptedAt != nil
		})).Return(nil)
		d.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
			return n.UserID == 1 && n.Type == model.NotificationInviteAccepted
		})).Return(nil)
		d.users.On("FindActiveByID", mock.Anything, uint(12)).
			Return(memberUser(12, "new@example.com"), nil)
		d.permissions.On("ListByRoleID", mock.Anything, testDefaultRoleID).
			Return([]model.Permission{{Code: model.PermViewCertificate}}, nil)

		result, err := svc.Accept(context.Background(), in)

		assert.NoError(t, err)
		assert.NotNil(t, result)
		claims, err := d.jwt.ValidateSessionToken(result.Token)
		assert.NoError(t, err)
		assert.Equal(t, uint(12), claims.UserID)
		assert.Equal(t, "newjoiner", claims.LoginName)
		d.invites.AssertExpectations(t)
		d.notifications.AssertExpectations(t)
	})

	t.Run("consumed code cannot be reused", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		invite := pendingInvite()
		invite.Accepted = true
		d.invites.On("FindByCode", mock.Anything, in.Code).Return(invite, nil)

		_, err := svc.Accept(context.Background(), in)

		assert.ErrorIs(t, err, apperrors.ErrInviteUsed)
		d.users.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("expired code", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		invite := pendingInvite()
		invite.ExpiresAt = time.Now().Add(-time.Hour)
		d.invites.On("FindByCode", mock.Anything, in.Code).Return(invite, nil)

		_, err := svc.Accept(context.Background(), in)

		assert.ErrorIs(t, err, apperrors.ErrInviteExpired)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.invites.On("FindByCode", mock.Anything, in.Code).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Accept(context.Background(), in)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestInviteService_Revoke(t *testing.T) {
	t.Run("pending invite is deleted", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.invites.On("FindByID", mock.Anything, uint(6)).Return(&model.Invite{ID: 6}, nil)
		d.invites.On("Delete", mock.Anything, uint(6)).Return(nil)

		assert.NoError(t, svc.Revoke(context.Background(), 6))
		d.invites.AssertExpectations(t)
	})

	t.Run("accepted invite cannot be revoked", func(t *testing.T) {
		svc, d := newInviteServiceForTest()
		d.invites.On("FindByID", mock.Anything, uint(6)).Return(&model.Invite{ID: 6, Accepted: true}, nil)

		err := svc.Revoke(context.Background(), 6)

		assert.ErrorIs(t, err, apperrors.ErrInviteUsed)
	})
}

func TestInviteService_OwnerID(t *testing.T) {
	svc, d := newInviteServiceForTest()
	d.invites.On("FindByID", mock.Anything, uint(6)).
		Return(&model.Invite{ID: 6, InvitedByID: 3}, nil)

	ownerID, err := svc.OwnerID(context.Background(), 6)

	assert.NoError(t, err)
	assert.Equal(t, uint(3), ownerID)
}
