package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// JurisdictionRepository defines jurisdiction persistence operations.
type JurisdictionRepository interface {
	Create(ctx context.Context, jurisdiction *model.Jurisdiction) error
	Update(ctx context.Context, jurisdiction *model.Jurisdiction) error
	FindByID(ctx context.Context, id uint) (*model.Jurisdiction, error)
	FindByCode(ctx context.Context, code string) (*model.Jurisdiction, error)
	List(ctx context.Context) ([]model.Jurisdiction, error)
	Delete(ctx context.Context, id uint) error
}

type jurisdictionRepository struct {
	db *gorm.DB
}

// NewJurisdictionRepository builds a GORM-backed repository.
func NewJurisdictionRepository(db *gorm.DB) JurisdictionRepository {
	return &jurisdictionRepository{db: db}
}

func (r *jurisdictionRepository) Create(ctx context.Context, jurisdiction *model.Jurisdiction) error {
	return r.db.WithContext(ctx).Create(jurisdiction).Error
}

func (r *jurisdictionRepository) Update(ctx context.Context, jurisdiction *model.Jurisdiction) error {
	return r.db.WithContext(ctx).Save(jurisdiction).Error
}

func (r *jurisdictionRepository) FindByID(ctx context.Context, id uint) (*model.Jurisdiction, error) {
	var jurisdiction model.Jurisdiction
	if err := r.db.WithContext(ctx).First(&jurisdiction, id).Error; err != nil {
		return nil, err
	}
	return &jurisdiction, nil
}

func (r *jurisdictionRepository) FindByCode(ctx context.Context, code string) (*model.Jurisdiction, error) {
	var jurisdiction model.Jurisdiction
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&jurisdiction).Error; err != nil {
		return nil, err
	}
	return &jurisdiction, nil
}

func (r *jurisdictionRepository) List(ctx context.Context) ([]model.Jurisdiction, error) {
	var jurisdictions []model.Jurisdiction
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&jurisdictions).Error; err != nil {
		return nil, err
	}
	return jurisdictions, nil
}

func (r *jurisdictionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Jurisdiction{}, id).Error
}
