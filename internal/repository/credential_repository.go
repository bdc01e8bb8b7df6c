package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// CredentialRepository defines credential persistence operations.
type CredentialRepository interface {
	Create(ctx context.Context, credential *model.Credential) error
	Update(ctx context.Context, credential *model.Credential) error
	FindByID(ctx context.Context, id uint) (*model.Credential, error)
	// FindActivePassword looks up the unique live password credential for a
	// login name.
	FindActivePassword(ctx context.Context, loginName string) (*model.Credential, error)
	// FindByOpenID looks up a credential by its (provider, subject) pair,
	// live or not.
	FindByOpenID(ctx context.Context, provider, subject string) (*model.Credential, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Credential, error)
	// CountActiveByUser counts a user's live credentials; the last one may
	// not be deleted.
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository builds a GORM-backed repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, credential *model.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

func (r *credentialRepository) Update(ctx context.Context, credential *model.Credential) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(credential).Error
}

func (r *credentialRepository) FindByID(ctx context.Context, id uint) (*model.Credential, error) {
	var credential model.Credential
	if err := r.db.WithContext(ctx).First(&credential, id).Error; err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) FindActivePassword(ctx context.Context, loginName string) (*model.Credential, error) {
	var credential model.Credential
	err := r.db.WithContext(ctx).
		Where("login_name = ? AND auth_type = ? AND active = ? AND deleted = ?",
			loginName, model.AuthTypePassword, true, false).
		First(&credential).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) FindByOpenID(ctx context.Context, provider, subject string) (*model.Credential, error) {
	var credential model.Credential
	err := r.db.WithContext(ctx).
		Where("open_id_provider = ? AND open_id_subject = ?", provider, subject).
		First(&credential).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) ListByUser(ctx context.Context, userID uint) ([]model.Credential, error) {
	var credentials []model.Credential
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Find(&credentials).Error
	if err != nil {
		return nil, err
	}
	return credentials, nil
}

func (r *credentialRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Credential{}).
		Where("user_id = ? AND active = ? AND deleted = ?", userID, true, false).
		Count(&count).Error
	return count, err
}
