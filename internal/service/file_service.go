package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
	"github.com/alexmeleta/compliance-mait-api/internal/storage"
)

// maxUploadBytes caps a single upload. Certificates are scans or photos;
// anything bigger is almost certainly a mistake.
const maxUploadBytes = 20 << 20

// UploadInput describes one incoming file.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileService stores uploads and hands out short-lived download links.
type FileService interface {
	Upload(ctx context.Context, ownerID uint, in UploadInput) (*model.File, error)
	// DownloadURL returns a presigned link to the stored bytes.
	DownloadURL(ctx context.Context, id uint) (string, error)
	Get(ctx context.Context, id uint) (*model.File, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.File, error)
	Delete(ctx context.Context, id uint) error
	// OwnerID resolves the uploader for the ownership gate.
	OwnerID(ctx context.Context, id uint) (uint, error)
}

type fileService struct {
	fileRepo repository.FileRepository
	blobs    storage.BlobStore
	logger   *zap.Logger
}

// NewFileService creates a file service.
func NewFileService(fileRepo repository.FileRepository, blobs storage.BlobStore, logger *zap.Logger) FileService {
	return &fileService{fileRepo: fileRepo, blobs: blobs, logger: logger}
}

// Upload writes the bytes to object storage first and records metadata
// after, so a failed upload leaves no dangling row.
func (s *fileService) Upload(ctx context.Context, ownerID uint, in UploadInput) (*model.File, error) {
	if in.Name == "" {
		return nil, apperrors.Validation("file name is required")
	}
	if in.Size <= 0 {
		return nil, apperrors.Validation("file is empty")
	}
	if in.Size > maxUploadBytes {
		return nil, apperrors.Validation("file exceeds the 20 MiB limit")
	}

	key := storage.NewStorageKey()
	if err := s.blobs.Upload(ctx, key, in.ContentType, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	file := &model.File{
		OwnerID:     ownerID,
		Name:        in.Name,
		ContentType: in.ContentType,
		SizeBytes:   in.Size,
		StorageKey:  key,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Best effort: the row failed, so drop the orphaned object.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned upload left in object storage",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("record file: %w", err)
	}
	return file, nil
}

func (s *fileService) DownloadURL(ctx context.Context, id uint) (string, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.PresignDownload(ctx, file.StorageKey)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

func (s *fileService) Get(ctx context.Context, id uint) (*model.File, error) {
	file, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return file, nil
}

func (s *fileService) ListByOwner(ctx context.Context, ownerID uint) ([]model.File, error) {
	return s.fileRepo.ListByOwner(ctx, ownerID)
}

func (s *fileService) Delete(ctx context.Context, id uint) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	// The row is gone; a stranded object only wastes space, so log and
	// move on rather than resurrecting the metadata.
	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Warn("deleting stored object failed",
			zap.String("key", file.StorageKey), zap.Error(err))
	}
	return nil
}

func (s *fileService) OwnerID(ctx context.Context, id uint) (uint, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return file.OwnerID, nil
}
