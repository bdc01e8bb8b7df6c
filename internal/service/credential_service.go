package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

const bcryptCost = 10

// CreateCredentialInput carries the fields for either credential kind. The
// password and OpenID branches are mutually exclusive.
type CreateCredentialInput struct {
	UserID         uint
	AuthType       model.AuthType
	LoginName      string
	Password       string
	OpenIDProvider string
	OpenIDSubject  string
}

// CredentialService manages authentication credentials.
type CredentialService interface {
	Create(ctx context.Context, in CreateCredentialInput) (*model.Credential, error)
	// VerifyPassword returns the live password credential for loginName when
	// plaintext matches its hash. Misses, mismatches and expired passwords
	// all come back as ErrInvalidCredentials.
	VerifyPassword(ctx context.Context, loginName, plaintext string) (*model.Credential, error)
	MarkPasswordExpired(ctx context.Context, credentialID uint) error
	RotatePassword(ctx context.Context, credentialID uint, newPlaintext string) error
	SoftDelete(ctx context.Context, credentialID uint) error
	FindOrCreateOpenID(ctx context.Context, userID uint, loginName, provider, subject string) (*model.Credential, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Credential, error)
}

type credentialService struct {
	credentialRepo repository.CredentialRepository
}

// NewCredentialService creates a credential service.
func NewCredentialService(credentialRepo repository.CredentialRepository) CredentialService {
	return &credentialService{credentialRepo: credentialRepo}
}

// Create persists a new active credential after invariant checks.
func (s *credentialService) Create(ctx context.Context, in CreateCredentialInput) (*model.Credential, error) {
	var credential *model.Credential
	var err error

	switch in.AuthType {
	case model.AuthTypePassword:
		if in.OpenIDProvider != "" || in.OpenIDSubject != "" {
			return nil, apperrors.Validation("password credential cannot carry an OpenID provider")
		}
		credential, err = newPasswordCredential(in.UserID, in.LoginName, in.Password)
	case model.AuthTypeOpenID:
		if in.Password != "" {
			return nil, apperrors.Validation("openid credential cannot carry a password")
		}
		credential, err = newOpenIDCredential(in.UserID, in.LoginName, in.OpenIDProvider, in.OpenIDSubject)
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown auth type %q", in.AuthType))
	}
	if err != nil {
		return nil, err
	}

	if err := s.credentialRepo.Create(ctx, credential); err != nil {
		return nil, mapDuplicate(err, "credential already exists")
	}
	return credential, nil
}

func (s *credentialService) VerifyPassword(ctx context.Context, loginName, plaintext string) (*model.Credential, error) {
	credential, err := s.credentialRepo.FindActivePassword(ctx, loginName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find password credential: %w", err)
	}

	if credential.PasswordHash == nil || credential.PasswordExpired {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*credential.PasswordHash), []byte(plaintext)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return credential, nil
}

func (s *credentialService) MarkPasswordExpired(ctx context.Context, credentialID uint) error {
	credential, err := s.findLive(ctx, credentialID)
	if err != nil {
		return err
	}
	if !credential.IsPassword() {
		return apperrors.Validation("not a password credential")
	}

	credential.PasswordExpired = true
	return s.credentialRepo.Update(ctx, credential)
}

// RotatePassword re-hashes with a fresh salt, stamps the rotation time and
// clears the expired flag.
func (s *credentialService) RotatePassword(ctx context.Context, credentialID uint, newPlaintext string) error {
	credential, err := s.findLive(ctx, credentialID)
	if err != nil {
		return err
	}
	if !credential.IsPassword() {
		return apperrors.Validation("not a password credential")
	}

	hash, err := hashPassword(newPlaintext)
	if err != nil {
		return err
	}

	now := time.Now()
	credential.PasswordHash = &hash
	credential.PasswordRotatedAt = &now
	credential.PasswordExpired = false
	return s.credentialRepo.Update(ctx, credential)
}

// SoftDelete deactivates a credential. Deleting the owner's only active
// credential is rejected so the account stays reachable.
func (s *credentialService) SoftDelete(ctx context.Context, credentialID uint) error {
	credential, err := s.findLive(ctx, credentialID)
	if err != nil {
		return err
	}

	if credential.Active {
		// Single unlocked count: two concurrent deletes of a user's last two
		// credentials can both pass. Accepted; the account recovers through
		// the reset flow.
		count, err := s.credentialRepo.CountActiveByUser(ctx, credential.UserID)
		if err != nil {
			return fmt.Errorf("count active credentials: %w", err)
		}
		if count <= 1 {
			return apperrors.ErrLastCredential
		}
	}

	credential.Active = false
	credential.Deleted = true
	return s.credentialRepo.Update(ctx, credential)
}

// FindOrCreateOpenID returns the credential mapped to (provider, subject),
// creating one bound to userID when the pair is unseen. Calling it twice
// with the same pair yields the same row.
func (s *credentialService) FindOrCreateOpenID(ctx context.Context, userID uint, loginName, provider, subject string) (*model.Credential, error) {
	existing, err := s.credentialRepo.FindByOpenID(ctx, provider, subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find openid credential: %w", err)
	}

	credential, err := newOpenIDCredential(userID, loginName, provider, subject)
	if err != nil {
		return nil, err
	}
	if err := s.credentialRepo.Create(ctx, credential); err != nil {
		// A concurrent creation of the same pair loses the race here.
		return nil, mapDuplicate(err, "openid credential already exists")
	}
	return credential, nil
}

func (s *credentialService) ListByUser(ctx context.Context, userID uint) ([]model.Credential, error) {
	return s.credentialRepo.ListByUser(ctx, userID)
}

// findLive loads a credential and hides soft-deleted rows from callers.
func (s *credentialService) findLive(ctx context.Context, credentialID uint) (*model.Credential, error) {
	credential, err := s.credentialRepo.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if credential.Deleted {
		return nil, apperrors.ErrCredentialNotFound
	}
	return credential, nil
}

// newPasswordCredential validates and hashes a password credential row.
// Registration flows use it directly so the write can join a transaction.
func newPasswordCredential(userID uint, loginName, plaintext string) (*model.Credential, error) {
	if loginName == "" {
		return nil, apperrors.Validation("login name is required")
	}
	if plaintext == "" {
		return nil, apperrors.Validation("password is required")
	}

	hash, err := hashPassword(plaintext)
	if err != nil {
		return nil, err
	}

	return &model.Credential{
		UserID:       userID,
		AuthType:     model.AuthTypePassword,
		LoginName:    loginName,
		PasswordHash: &hash,
		Active:       true,
	}, nil
}

// newOpenIDCredential validates an OpenID credential row. The login name
// defaults to the subject when the caller has nothing better.
func newOpenIDCredential(userID uint, loginName, provider, subject string) (*model.Credential, error) {
	if provider == "" || subject == "" {
		return nil, apperrors.Validation("openid provider and subject are required")
	}
	if loginName == "" {
		loginName = subject
	}

	return &model.Credential{
		UserID:         userID,
		AuthType:       model.AuthTypeOpenID,
		LoginName:      loginName,
		OpenIDProvider: &provider,
		OpenIDSubject:  &subject,
		Active:         true,
	}, nil
}

func hashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// mapDuplicate converts store duplicate-key failures into conflicts.
func mapDuplicate(err error, detail string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(detail)
	}
	return err
}
