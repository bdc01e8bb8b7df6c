package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

func TestNotificationService_ScanExpiringCertificates(t *testing.T) {
	expiresSoon := time.Now().AddDate(0, 0, 10)

	t.Run("skips certificates already notified", func(t *testing.T) {
		mockNotifications := new(MockNotificationRepository)
		mockCertificates := new(MockCertificateRepository)
		mockCertificates.On("ListExpiring", mock.Anything, uint(0), mock.AnythingOfType("time.Time")).
			Return([]model.Certificate{
				{ID: 1, UserID: 7, Title: "CPR Certification", ExpiresAt: &expiresSoon},
				{ID: 2, UserID: 8, Title: "First Aid", ExpiresAt: &expiresSoon},
			}, nil)
		mockNotifications.On("ExistsByTypeAndReference", mock.Anything, model.NotificationCertificateExpiring, uint(1)).
			Return(true, nil)
		mockNotifications.On("ExistsByTypeAndReference", mock.Anything, model.NotificationCertificateExpiring, uint(2)).
			Return(false, nil)
		mockNotifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(batch []model.Notification) bool {
			return len(batch) == 1 && batch[0].UserID == 8 &&
				batch[0].ReferenceID != nil && *batch[0].ReferenceID == 2
		})).Return(nil)

		svc := NewNotificationService(mockNotifications, mockCertificates)
		created, err := svc.ScanExpiringCertificates(context.Background(), 30)

		assert.NoError(t, err)
		assert.Equal(t, 1, created)
		mockNotifications.AssertExpectations(t)
	})

	t.Run("rescan creates nothing new", func(t *testing.T) {
		mockNotifications := new(MockNotificationRepository)
		mockCertificates := new(MockCertificateRepository)
		mockCertificates.On("ListExpiring", mock.Anything, uint(0), mock.AnythingOfType("time.Time")).
			Return([]model.Certificate{
				{ID: 1, UserID: 7, Title: "CPR Certification", ExpiresAt: &expiresSoon},
			}, nil)
		mockNotifications.On("ExistsByTypeAndReference", mock.Anything, model.NotificationCertificateExpiring, uint(1)).
			Return(true, nil)
		mockNotifications.On("CreateBatch", mock.Anything, mock.MatchedBy(func(batch []model.Notification) bool {
			return len(batch) == 0
		})).Return(nil)

		svc := NewNotificationService(mockNotifications, mockCertificates)
		created, err := svc.ScanExpiringCertificates(context.Background(), 30)

		assert.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Run("unknown notification", func(t *testing.T) {
		mockNotifications := new(MockNotificationRepository)
		mockNotifications.On("FindByID", mock.Anything, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewNotificationService(mockNotifications, new(MockCertificateRepository))
		err := svc.MarkRead(context.Background(), 5)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("marks the row", func(t *testing.T) {
		mockNotifications := new(MockNotificationRepository)
		mockNotifications.On("FindByID", mock.Anything, uint(5)).
			Return(&model.Notification{ID: 5, UserID: 7}, nil)
		mockNotifications.On("MarkRead", mock.Anything, uint(5)).Return(nil)

		svc := NewNotificationService(mockNotifications, new(MockCertificateRepository))
		err := svc.MarkRead(context.Background(), 5)

		assert.NoError(t, err)
		mockNotifications.AssertExpectations(t)
	})
}

func TestNotificationService_OwnerID(t *testing.T) {
	mockNotifications := new(MockNotificationRepository)
	mockNotifications.On("FindByID", mock.Anything, uint(5)).
		Return(&model.Notification{ID: 5, UserID: 7}, nil)

	svc := NewNotificationService(mockNotifications, new(MockCertificateRepository))
	ownerID, err := svc.OwnerID(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), ownerID)
}
