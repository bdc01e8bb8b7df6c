package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// ConnectionService manages peer connections between users. State changes
// and the notifications they produce commit in one transaction.
type ConnectionService interface {
	Request(ctx context.Context, requesterID, addresseeID uint) (*model.Connection, error)
	Accept(ctx context.Context, connectionID, userID uint) (*model.Connection, error)
	Decline(ctx context.Context, connectionID, userID uint) (*model.Connection, error)
	// Remove deletes a connection; either side may do it.
	Remove(ctx context.Context, connectionID, userID uint) error
	List(ctx context.Context, userID uint, status model.ConnectionStatus) ([]model.Connection, error)
	ListPending(ctx context.Context, userID uint) ([]model.Connection, error)
}

type connectionService struct {
	txm            repository.TxManager
	connectionRepo repository.ConnectionRepository
	userRepo       repository.UserRepository
}

// NewConnectionService creates a connection service.
func NewConnectionService(txm repository.TxManager, connectionRepo repository.ConnectionRepository, userRepo repository.UserRepository) ConnectionService {
	return &connectionService{txm: txm, connectionRepo: connectionRepo, userRepo: userRepo}
}

// Request opens a pending connection towards addressee and notifies them.
// A previously declined pair may be re-requested; a pending or accepted
// pair may not.
func (s *connectionService) Request(ctx context.Context, requesterID, addresseeID uint) (*model.Connection, error) {
	if requesterID == addresseeID {
		return nil, apperrors.Validation("cannot connect to yourself")
	}

	requester, err := s.userRepo.FindActiveByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}
	if _, err := s.userRepo.FindActiveByID(ctx, addresseeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load addressee: %w", err)
	}

	existing, err := s.connectionRepo.FindBetween(ctx, requesterID, addresseeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find connection: %w", err)
	}

	var connection *model.Connection
	err = s.txm.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		switch {
		case existing == nil:
			connection = &model.Connection{
				RequesterID: requesterID,
				AddresseeID: addresseeID,
				Status:      model.ConnectionStatusPending,
			}
			if err := tx.Connections.Create(ctx, connection); err != nil {
				return mapDuplicate(err, "connection already exists")
			}
		case existing.Status == model.ConnectionStatusDeclined:
			// Reopen with the new direction; the addressee decides again.
			existing.RequesterID = requesterID
			existing.AddresseeID = addresseeID
			existing.Status = model.ConnectionStatusPending
			if err := tx.Connections.Update(ctx, existing); err != nil {
				return fmt.Errorf("reopen connection: %w", err)
			}
			connection = existing
		default:
			return apperrors.Conflict("connection already exists")
		}

		return tx.Notifications.Create(ctx, &model.Notification{
			UserID:      addresseeID,
			Type:        model.NotificationConnectionRequest,
			Title:       "New connection request",
			Body:        fmt.Sprintf("%s wants to connect with you", requester.FullName()),
			ReferenceID: &connection.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return connection, nil
}

// Accept moves a pending connection to accepted. Only the addressee may
// accept; the requester is notified.
func (s *connectionService) Accept(ctx context.Context, connectionID, userID uint) (*model.Connection, error) {
	connection, err := s.pendingFor(ctx, connectionID, userID)
	if err != nil {
		return nil, err
	}

	addressee, err := s.userRepo.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load addressee: %w", err)
	}

	err = s.txm.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		connection.Status = model.ConnectionStatusAccepted
		if err := tx.Connections.Update(ctx, connection); err != nil {
			return fmt.Errorf("accept connection: %w", err)
		}
		return tx.Notifications.Create(ctx, &model.Notification{
			UserID:      connection.RequesterID,
			Type:        model.NotificationConnectionAccepted,
			Title:       "Connection accepted",
			Body:        fmt.Sprintf("%s accepted your connection request", addressee.FullName()),
			ReferenceID: &connection.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (s *connectionService) Decline(ctx context.Context, connectionID, userID uint) (*model.Connection, error) {
	connection, err := s.pendingFor(ctx, connectionID, userID)
	if err != nil {
		return nil, err
	}

	connection.Status = model.ConnectionStatusDeclined
	if err := s.connectionRepo.Update(ctx, connection); err != nil {
		return nil, fmt.Errorf("decline connection: %w", err)
	}
	return connection, nil
}

func (s *connectionService) Remove(ctx context.Context, connectionID, userID uint) error {
	connection, err := s.connectionRepo.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find connection: %w", err)
	}
	if connection.RequesterID != userID && connection.AddresseeID != userID {
		return apperrors.ErrForbidden
	}
	return s.connectionRepo.Delete(ctx, connection.ID)
}

func (s *connectionService) List(ctx context.Context, userID uint, status model.ConnectionStatus) ([]model.Connection, error) {
	return s.connectionRepo.ListForUser(ctx, userID, status)
}

func (s *connectionService) ListPending(ctx context.Context, userID uint) ([]model.Connection, error) {
	return s.connectionRepo.ListPendingForUser(ctx, userID)
}

// pendingFor loads a pending connection addressed to userID.
func (s *connectionService) pendingFor(ctx context.Context, connectionID, userID uint) (*model.Connection, error) {
	connection, err := s.connectionRepo.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find connection: %w", err)
	}
	if connection.AddresseeID != userID {
		return nil, apperrors.ErrForbidden
	}
	if connection.Status != model.ConnectionStatusPending {
		return nil, apperrors.Conflict("connection is not pending")
	}
	return connection, nil
}
