package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/mailer"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

const inviteTTL = 7 * 24 * time.Hour

// AcceptInviteInput carries the invitee's registration details; email and
// role come from the invite itself.
type AcceptInviteInput struct {
	Code      string
	Password  string
	FirstName string
	LastName  string
	LoginName string
}

// InviteService manages email invitations and the registration path that
// consumes them.
type InviteService interface {
	Create(ctx context.Context, inviterID uint, email string, roleID uint) (*model.Invite, error)
	// Accept registers the invitee and consumes the invite in one
	// transaction, so a code can never create two accounts.
	Accept(ctx context.Context, in AcceptInviteInput) (*AuthResult, error)
	ListByInviter(ctx context.Context, inviterID uint) ([]model.Invite, error)
	Revoke(ctx context.Context, inviteID uint) error
	// OwnerID resolves the inviter for the ownership gate.
	OwnerID(ctx context.Context, inviteID uint) (uint, error)
}

type inviteService struct {
	txm         repository.TxManager
	inviteRepo  repository.InviteRepository
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	permissions PermissionService
	jwtService  *auth.JWTService
	mail        mailer.Mailer
	appBaseURL  string
}

// NewInviteService creates an invite service.
func NewInviteService(
	txm repository.TxManager,
	inviteRepo repository.InviteRepository,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permissions PermissionService,
	jwtService *auth.JWTService,
	mail mailer.Mailer,
	appBaseURL string,
) InviteService {
	return &inviteService{
		txm:         txm,
		inviteRepo:  inviteRepo,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		jwtService:  jwtService,
		mail:        mail,
		appBaseURL:  appBaseURL,
	}
}

// Create records the invite and mails the code link. Mail delivery is
// asynchronous; a failed send is logged by the mailer and the invite stays
// valid, re-sendable by creating another.
func (s *inviteService) Create(ctx context.Context, inviterID uint, email string, roleID uint) (*model.Invite, error) {
	inviter, err := s.userRepo.FindActiveByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("load inviter: %w", err)
	}

	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("role does not exist")
		}
		return nil, fmt.Errorf("find role: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && !existing.Deleted {
		return nil, apperrors.Conflict("email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	invite := &model.Invite{
		Email:       email,
		Code:        uuid.New().String(),
		RoleID:      roleID,
		InvitedByID: inviterID,
		ExpiresAt:   time.Now().Add(inviteTTL),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	inviteURL := fmt.Sprintf("%s/invite?code=%s", s.appBaseURL, invite.Code)
	s.mail.SendInvite(email, inviter.FullName(), inviteURL)
	return invite, nil
}

func (s *inviteService) Accept(ctx context.Context, in AcceptInviteInput) (*AuthResult, error) {
	invite, err := s.inviteRepo.FindByCode(ctx, in.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	if invite.Accepted {
		return nil, apperrors.ErrInviteUsed
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, apperrors.ErrInviteExpired
	}

	var credential *model.Credential
	var userID uint
	err = s.txm.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		user := &model.User{
			Email:     invite.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			RoleID:    invite.RoleID,
			Active:    true,
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			return mapDuplicate(err, "email already registered")
		}

		cred, err := newPasswordCredential(user.ID, in.LoginName, in.Password)
		if err != nil {
			return err
		}
		if err := tx.Credentials.Create(ctx, cred); err != nil {
			return mapDuplicate(err, "login name already taken")
		}

		now := time.Now()
		invite.Accepted = true
		invite.AcceptedAt = &now
		if err := tx.Invites.Update(ctx, invite); err != nil {
			return fmt.Errorf("consume invite: %w", err)
		}

		if err := tx.Notifications.Create(ctx, &model.Notification{
			UserID:      invite.InvitedByID,
			Type:        model.NotificationInviteAccepted,
			Title:       "Invitation accepted",
			Body:        fmt.Sprintf("%s joined on your invitation", user.FullName()),
			ReferenceID: &invite.ID,
		}); err != nil {
			return fmt.Errorf("notify inviter: %w", err)
		}

		userID = user.ID
		credential = cred
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildAuthResult(ctx, s.userRepo, s.permissions, s.jwtService, userID, credential)
}

func (s *inviteService) ListByInviter(ctx context.Context, inviterID uint) ([]model.Invite, error) {
	return s.inviteRepo.ListByInviter(ctx, inviterID)
}

func (s *inviteService) Revoke(ctx context.Context, inviteID uint) error {
	invite, err := s.findLive(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.Accepted {
		return apperrors.ErrInviteUsed
	}
	return s.inviteRepo.Delete(ctx, invite.ID)
}

func (s *inviteService) OwnerID(ctx context.Context, inviteID uint) (uint, error) {
	invite, err := s.findLive(ctx, inviteID)
	if err != nil {
		return 0, err
	}
	return invite.InvitedByID, nil
}

func (s *inviteService) findLive(ctx context.Context, inviteID uint) (*model.Invite, error) {
	invite, err := s.inviteRepo.FindByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find invite: %w", err)
	}
	return invite, nil
}
