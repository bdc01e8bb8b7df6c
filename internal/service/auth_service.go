package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/mailer"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// RegisterInput carries a self-service registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	LoginName string
	RoleID    uint
}

// OpenIDInput carries an identity asserted by an external OpenID provider.
type OpenIDInput struct {
	Provider  string
	Subject   string
	Email     string
	LoginName string
	FirstName string
	LastName  string
}

// AuthResult is what a successful authentication hands back: a session
// token, the live user and the role's permission codes resolved just now.
type AuthResult struct {
	Token       string
	User        *model.User
	Permissions []string
}

// AuthService handles registration, login and password lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, loginName, password string) (*AuthResult, error)
	LoginOpenID(ctx context.Context, in OpenIDInput) (*AuthResult, error)
	// ChangePassword rotates the caller's password credential. A wrong
	// current password is a validation failure, not an authentication one:
	// the caller already holds a session.
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	// RequestPasswordReset emails a reset link when the address is known.
	// It reveals nothing: the outcome is identical for unknown addresses.
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type authService struct {
	txm           repository.TxManager
	userRepo      repository.UserRepository
	credentials   CredentialService
	permissions   PermissionService
	jwtService    *auth.JWTService
	mail          mailer.Mailer
	logger        *zap.Logger
	defaultRoleID uint
	appBaseURL    string
}

// NewAuthService creates an authentication service.
func NewAuthService(
	txm repository.TxManager,
	userRepo repository.UserRepository,
	credentials CredentialService,
	permissions PermissionService,
	jwtService *auth.JWTService,
	mail mailer.Mailer,
	logger *zap.Logger,
	defaultRoleID uint,
	appBaseURL string,
) AuthService {
	return &authService{
		txm:           txm,
		userRepo:      userRepo,
		credentials:   credentials,
		permissions:   permissions,
		jwtService:    jwtService,
		mail:          mail,
		logger:        logger,
		defaultRoleID: defaultRoleID,
		appBaseURL:    appBaseURL,
	}
}

// Register creates the user and their first password credential in one
// transaction, so a rejected credential cannot leave an orphaned user.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	roleID := in.RoleID
	if roleID == 0 {
		roleID = s.defaultRoleID
	}

	var credential *model.Credential
	var userID uint
	err := s.txm.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		user := &model.User{
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			RoleID:    roleID,
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

		userID = user.ID
		credential = cred
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.finishAuth(ctx, userID, credential)
}

func (s *authService) Login(ctx context.Context, loginName, password string) (*AuthResult, error) {
	credential, err := s.credentials.VerifyPassword(ctx, loginName, password)
	if err != nil {
		return nil, err
	}
	return s.finishAuth(ctx, credential.UserID, credential)
}

// LoginOpenID signs in an externally asserted identity. An unseen
// (provider, subject) pair joins an existing account with the same email or
// creates a new account transactionally.
func (s *authService) LoginOpenID(ctx context.Context, in OpenIDInput) (*AuthResult, error) {
	owner, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	var credential *model.Credential
	if owner != nil {
		credential, err = s.credentials.FindOrCreateOpenID(ctx, owner.ID, in.LoginName, in.Provider, in.Subject)
		if err != nil {
			return nil, err
		}
	} else {
		err = s.txm.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
			user := &model.User{
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				RoleID:    s.defaultRoleID,
				Active:    true,
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return mapDuplicate(err, "email already registered")
			}

			cred, err := newOpenIDCredential(user.ID, in.LoginName, in.Provider, in.Subject)
			if err != nil {
				return err
			}
			if err := tx.Credentials.Create(ctx, cred); err != nil {
				return mapDuplicate(err, "openid credential already exists")
			}

			credential = cred
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if credential.Deleted || !credential.Active {
		return nil, apperrors.ErrInvalidCredentials
	}
	// The pair decides the account: an existing mapping wins over the email.
	return s.finishAuth(ctx, credential.UserID, credential)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	matched, err := s.matchPasswordCredential(ctx, userID, currentPassword)
	if err != nil {
		return err
	}
	return s.credentials.RotatePassword(ctx, matched.ID, newPassword)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("reset request lookup failed", zap.Error(err))
		}
		return nil
	}
	if !user.Active || user.Deleted {
		return nil
	}

	token, err := s.jwtService.IssueResetToken(user)
	if err != nil {
		s.logger.Error("issuing reset token failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, token)
	s.mail.SendPasswordReset(user.Email, user.FullName(), resetURL)
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtService.ValidateResetToken(token)
	if err != nil {
		// Wrong scope, bad signature and expiry all read the same to the
		// caller: the link is no good.
		return apperrors.Validation("invalid or expired reset token")
	}

	credential, err := s.activePasswordCredential(ctx, claims.UserID)
	if err != nil {
		return err
	}
	return s.credentials.RotatePassword(ctx, credential.ID, newPassword)
}

func (s *authService) finishAuth(ctx context.Context, userID uint, credential *model.Credential) (*AuthResult, error) {
	return buildAuthResult(ctx, s.userRepo, s.permissions, s.jwtService, userID, credential)
}

// buildAuthResult reloads the live user, resolves the role's permissions and
// mints a session token. Shared by every flow that ends in a signed-in user.
func buildAuthResult(
	ctx context.Context,
	userRepo repository.UserRepository,
	permissions PermissionService,
	jwtService *auth.JWTService,
	userID uint,
	credential *model.Credential,
) (*AuthResult, error) {
	user, err := userRepo.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	codes, err := permissions.ResolvePermissions(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	token, err := jwtService.IssueSessionToken(user, credential)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &AuthResult{Token: token, User: user, Permissions: codes}, nil
}

// matchPasswordCredential finds the caller's live password credential whose
// hash verifies against plaintext.
func (s *authService) matchPasswordCredential(ctx context.Context, userID uint, plaintext string) (*model.Credential, error) {
	credentials, err := s.credentials.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	for i := range credentials {
		c := &credentials[i]
		if !c.IsPassword() || !c.Active || c.Deleted || c.PasswordHash == nil {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(*c.PasswordHash), []byte(plaintext)) == nil {
			return c, nil
		}
	}
	return nil, apperrors.Validation("current password is incorrect")
}

// activePasswordCredential returns the user's live password credential.
func (s *authService) activePasswordCredential(ctx context.Context, userID uint) (*model.Credential, error) {
	credentials, err := s.credentials.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	for i := range credentials {
		c := &credentials[i]
		if c.IsPassword() && c.Active && !c.Deleted {
			return c, nil
		}
	}
	return nil, apperrors.Validation("no password credential on file")
}
