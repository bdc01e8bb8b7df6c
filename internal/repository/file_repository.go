package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// FileRepository defines file metadata persistence operations.
type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	FindByID(ctx context.Context, id uint) (*model.File, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.File, error)
	Delete(ctx context.Context, id uint) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository builds a GORM-backed repository.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uint) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.File{}, id).Error
}
