package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// NotificationService manages per-user notifications.
type NotificationService interface {
	List(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
	// OwnerID resolves the notified user for the ownership gate.
	OwnerID(ctx context.Context, id uint) (uint, error)
	// ScanExpiringCertificates writes one notification per certificate
	// expiring within days, skipping certificates already notified. Meant to
	// be triggered externally (cron hitting the endpoint); returns how many
	// notifications were created.
	ScanExpiringCertificates(ctx context.Context, days int) (int, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	certificateRepo  repository.CertificateRepository
}

// NewNotificationService creates a notification service.
func NewNotificationService(notificationRepo repository.NotificationRepository, certificateRepo repository.CertificateRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, certificateRepo: certificateRepo}
}

func (s *notificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.notificationRepo.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, id)
}

func (s *notificationService) OwnerID(ctx context.Context, id uint) (uint, error) {
	notification, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	return notification.UserID, nil
}

func (s *notificationService) ScanExpiringCertificates(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = model.ExpiringWindowDays
	}
	before := time.Now().AddDate(0, 0, days)

	certificates, err := s.certificateRepo.ListExpiring(ctx, 0, before)
	if err != nil {
		return 0, fmt.Errorf("list expiring certificates: %w", err)
	}

	batch := make([]model.Notification, 0, len(certificates))
	for i := range certificates {
		c := &certificates[i]
		exists, err := s.notificationRepo.ExistsByTypeAndReference(ctx, model.NotificationCertificateExpiring, c.ID)
		if err != nil {
			return 0, fmt.Errorf("check notification: %w", err)
		}
		if exists {
			continue
		}
		batch = append(batch, model.Notification{
			UserID:      c.UserID,
			Type:        model.NotificationCertificateExpiring,
			Title:       "Certificate expiring soon",
			Body:        fmt.Sprintf("%q expires on %s", c.Title, c.ExpiresAt.Format("2006-01-02")),
			ReferenceID: &c.ID,
		})
	}

	if err := s.notificationRepo.CreateBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("create notifications: %w", err)
	}
	return len(batch), nil
}

func (s *notificationService) find(ctx context.Context, id uint) (*model.Notification, error) {
	notification, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return notification, nil
}
