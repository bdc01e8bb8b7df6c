package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

func newFileServiceForTest() (FileService, *MockFileRepository, *MockBlobStore) {
	mockRepo := new(MockFileRepository)
	mockBlobs := new(MockBlobStore)
	return NewFileService(mockRepo, mockBlobs, zap.NewNop()), mockRepo, mockBlobs
}

func TestFileService_Upload(t *testing.T) {
	t.Run("stores bytes then metadata", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newFileServiceForTest()
		body := strings.NewReader("scan bytes")
		var storageKey string
		mockBlobs.On("Upload", mock.Anything, mock.AnythingOfType("string"), "application/pdf", body, int64(10)).
			Run(func(args mock.Arguments) { storageKey = args.String(1) }).
			Return(nil)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
			return f.OwnerID == 1 && f.Name == "certificate.pdf" && f.SizeBytes == 10
		})).Return(nil)

		file, err := svc.Upload(context.Background(), 1, UploadInput{
			Name:        "certificate.pdf",
			ContentType: "application/pdf",
			Size:        10,
			Body:        body,
		})

		assert.NoError(t, err)
		assert.NotNil(t, file)
		assert.Equal(t, storageKey, file.StorageKey)
		assert.True(t, strings.HasPrefix(storageKey, "users/"), "keys are partitioned by upload date")
		mockRepo.AssertExpectations(t)
		mockBlobs.AssertExpectations(t)
	})

	t.Run("failed metadata write removes the orphaned object", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newFileServiceForTest()
		var storageKey string
		mockBlobs.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { storageKey = args.String(1) }).
			Return(nil)
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("deadlock"))
		mockBlobs.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
			return key == storageKey
		})).Return(nil)

		_, err := svc.Upload(context.Background(), 1, UploadInput{
			Name: "certificate.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("scan bytes"),
		})

		assert.Error(t, err)
		mockBlobs.AssertExpectations(t)
	})

	tests := []struct {
		name string
		in   UploadInput
	}{
		{name: "missing name", in: UploadInput{Size: 10}},
		{name: "empty body", in: UploadInput{Name: "x.pdf", Size: 0}},
		{name: "oversized body", in: UploadInput{Name: "x.pdf", Size: maxUploadBytes + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, mockBlobs := newFileServiceForTest()

			_, err := svc.Upload(context.Background(), 1, tt.in)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			mockBlobs.AssertNumberOfCalls(t, "Upload", 0)
		})
	}
}

func TestFileService_DownloadURL(t *testing.T) {
	t.Run("presigns the stored key", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newFileServiceForTest()
		mockRepo.On("FindByID", mock.Anything, uint(8)).
			Return(&model.File{ID: 8, StorageKey: "users/2026/08/20/abc"}, nil)
		mockBlobs.On("PresignDownload", mock.Anything, "users/2026/08/20/abc").
			Return("https://bucket.example.com/signed", nil)

		url, err := svc.DownloadURL(context.Background(), 8)

		assert.NoError(t, err)
		assert.Equal(t, "https://bucket.example.com/signed", url)
	})

	t.Run("unknown file", func(t *testing.T) {
		svc, mockRepo, _ := newFileServiceForTest()
		mockRepo.On("FindByID", mock.Anything, uint(8)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.DownloadURL(context.Background(), 8)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestFileService_Delete(t *testing.T) {
	t.Run("removes metadata and bytes", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newFileServiceForTest()
		mockRepo.On("FindByID", mock.Anything, uint(8)).
			Return(&model.File{ID: 8, StorageKey: "users/2026/08/20/abc"}, nil)
		mockRepo.On("Delete", mock.Anything, uint(8)).Return(nil)
		mockBlobs.On("Delete", mock.Anything, "users/2026/08/20/abc").Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), 8))
		mockRepo.AssertExpectations(t)
		mockBlobs.AssertExpectations(t)
	})

	t.Run("stranded object does not fail the delete", func(t *testing.T) {
		svc, mockRepo, mockBlobs := newFileServiceForTest()
		mockRepo.On("FindByID", mock.Anything, uint(8)).
			Return(&model.File{ID: 8, StorageKey: "users/2026/08/20/abc"}, nil)
		mockRepo.On("Delete", mock.Anything, uint(8)).Return(nil)
		mockBlobs.On("Delete", mock.Anything, "users/2026/08/20/abc").
			Return(errors.New("connection reset"))

		assert.NoError(t, svc.Delete(context.Background(), 8))
	})
}

func TestFileService_OwnerID(t *testing.T) {
	svc, mockRepo, _ := newFileServiceForTest()
	mockRepo.On("FindByID", mock.Anything, uint(8)).
		Return(&model.File{ID: 8, OwnerID: 7}, nil)

	ownerID, err := svc.OwnerID(context.Background(), 8)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), ownerID)
}
