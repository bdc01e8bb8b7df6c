package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// InviteRepository defines invite persistence operations.
type InviteRepository interface {
	Create(ctx context.Context, invite *model.Invite) error
	Update(ctx context.Context, invite *model.Invite) error
	FindByID(ctx context.Context, id uint) (*model.Invite, error)
	FindByCode(ctx context.Context, code string) (*model.Invite, error)
	ListByInviter(ctx context.Context, inviterID uint) ([]model.Invite, error)
	Delete(ctx context.Context, id uint) error
}

type inviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository builds a GORM-backed repository.
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *inviteRepository) Update(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invite).Error
}

func (r *inviteRepository) FindByID(ctx context.Context, id uint) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).First(&invite, id).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) FindByCode(ctx context.Context, code string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) ListByInviter(ctx context.Context, inviterID uint) ([]model.Invite, error) {
	var invites []model.Invite
	err := r.db.WithContext(ctx).
		Where("invited_by_id = ?", inviterID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *inviteRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Invite{}, id).Error
}
