package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// ConnectionRepository defines user connection persistence operations.
type ConnectionRepository interface {
	Create(ctx context.Context, connection *model.Connection) error
	Update(ctx context.Context, connection *model.Connection) error
	FindByID(ctx context.Context, id uint) (*model.Connection, error)
	FindBetween(ctx context.Context, userA, userB uint) (*model.Connection, error)
	ListForUser(ctx context.Context, userID uint, status model.ConnectionStatus) ([]model.Connection, error)
	ListPendingForUser(ctx context.Context, userID uint) ([]model.Connection, error)
	Delete(ctx context.Context, id uint) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository builds a GORM-backed repository.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, connection *model.Connection) error {
	return r.db.WithContext(ctx).Create(connection).Error
}

func (r *connectionRepository) Update(ctx context.Context, connection *model.Connection) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(connection).Error
}

func (r *connectionRepository) FindByID(ctx context.Context, id uint) (*model.Connection, error) {
	var connection model.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Addressee").
		First(&connection, id).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

// FindBetween looks up a connection in either direction between two users.
func (r *connectionRepository) FindBetween(ctx context.Context, userA, userB uint) (*model.Connection, error) {
	var connection model.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		First(&connection).Error
	if err != nil {
		return nil, err
	}
	return &connection, nil
}

// ListForUser returns connections on either side of userID, optionally
// narrowed to one status. An empty status means all of them.
func (r *connectionRepository) ListForUser(ctx context.Context, userID uint, status model.ConnectionStatus) ([]model.Connection, error) {
	q := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Addressee").
		Where("requester_id = ? OR addressee_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var connections []model.Connection
	if err := q.Order("created_at DESC").Find(&connections).Error; err != nil {
		return nil, err
	}
	return connections, nil
}

// ListPendingForUser returns requests awaiting the user's decision.
func (r *connectionRepository) ListPendingForUser(ctx context.Context, userID uint) ([]model.Connection, error) {
	var connections []model.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("addressee_id = ? AND status = ?", userID, model.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (r *connectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Connection{}, id).Error
}
