package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// CertificateRepository defines certificate persistence operations.
type CertificateRepository interface {
	Create(ctx context.Context, certificate *model.Certificate) error
	Update(ctx context.Context, certificate *model.Certificate) error
	FindByID(ctx context.Context, id uint) (*model.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error)
	// ListExpiring returns certificates expiring in (now, before], newest
	// deadline first — the compliance dashboard query.
	ListExpiring(ctx context.Context, userID uint, before time.Time) ([]model.Certificate, error)
	Delete(ctx context.Context, id uint) error
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository builds a GORM-backed repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, certificate *model.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *certificateRepository) Update(ctx context.Context, certificate *model.Certificate) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(certificate).Error
}

func (r *certificateRepository) FindByID(ctx context.Context, id uint) (*model.Certificate, error) {
	var certificate model.Certificate
	if err := r.db.WithContext(ctx).Preload("Jurisdiction").First(&certificate, id).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *certificateRepository) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	var certificates []model.Certificate
	err := r.db.WithContext(ctx).
		Preload("Jurisdiction").
		Where("user_id = ?", userID).
		Order("expires_at ASC").
		Find(&certificates).Error
	if err != nil {
		return nil, err
	}
	return certificates, nil
}

func (r *certificateRepository) ListExpiring(ctx context.Context, userID uint, before time.Time) ([]model.Certificate, error) {
	var certificates []model.Certificate
	q := r.db.WithContext(ctx).
		Preload("Jurisdiction").
		Where("expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?", time.Now(), before)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Order("expires_at ASC").Find(&certificates).Error; err != nil {
		return nil, err
	}
	return certificates, nil
}

func (r *certificateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Certificate{}, id).Error
}
