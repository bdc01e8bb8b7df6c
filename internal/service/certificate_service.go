package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// CertificateInput carries the writable certificate fields.
type CertificateInput struct {
	Title          string
	Number         string
	Authority      string
	JurisdictionID *uint
	IssuedAt       *time.Time
	ExpiresAt      *time.Time
	Credits        decimal.Decimal
	AttachmentID   *uint
}

// CertificateService manages professional certificates.
type CertificateService interface {
	Create(ctx context.Context, ownerID uint, in CertificateInput) (*model.Certificate, error)
	Get(ctx context.Context, id uint) (*model.Certificate, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error)
	Update(ctx context.Context, id uint, in CertificateInput) (*model.Certificate, error)
	Delete(ctx context.Context, id uint) error
	// ListExpiring returns certificates whose expiry falls within the next
	// days. userID zero widens the query to every user.
	ListExpiring(ctx context.Context, userID uint, days int) ([]model.Certificate, error)
	// OwnerID resolves the owning user for the ownership gate.
	OwnerID(ctx context.Context, id uint) (uint, error)
}

type certificateService struct {
	certificateRepo  repository.CertificateRepository
	jurisdictionRepo repository.JurisdictionRepository
	fileRepo         repository.FileRepository
	validator        *CertificateValidator
}

// NewCertificateService creates a certificate service.
func NewCertificateService(
	certificateRepo repository.CertificateRepository,
	jurisdictionRepo repository.JurisdictionRepository,
	fileRepo repository.FileRepository,
) CertificateService {
	return &certificateService{
		certificateRepo:  certificateRepo,
		jurisdictionRepo: jurisdictionRepo,
		fileRepo:         fileRepo,
		validator:        NewCertificateValidator(),
	}
}

func (s *certificateService) Create(ctx context.Context, ownerID uint, in CertificateInput) (*model.Certificate, error) {
	if err := s.checkInput(ctx, ownerID, in); err != nil {
		return nil, err
	}

	certificate := &model.Certificate{
		UserID:         ownerID,
		Title:          in.Title,
		Number:         s.validator.NormalizeNumber(in.Number),
		Authority:      in.Authority,
		JurisdictionID: in.JurisdictionID,
		IssuedAt:       in.IssuedAt,
		ExpiresAt:      in.ExpiresAt,
		Credits:        in.Credits,
		AttachmentID:   in.AttachmentID,
	}
	if err := s.certificateRepo.Create(ctx, certificate); err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return s.Get(ctx, certificate.ID)
}

func (s *certificateService) Get(ctx context.Context, id uint) (*model.Certificate, error) {
	certificate, err := s.certificateRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return certificate, nil
}

func (s *certificateService) ListByUser(ctx context.Context, userID uint) ([]model.Certificate, error) {
	return s.certificateRepo.ListByUser(ctx, userID)
}

func (s *certificateService) Update(ctx context.Context, id uint, in CertificateInput) (*model.Certificate, error) {
	certificate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, certificate.UserID, in); err != nil {
		return nil, err
	}

	certificate.Title = in.Title
	certificate.Number = s.validator.NormalizeNumber(in.Number)
	certificate.Authority = in.Authority
	certificate.JurisdictionID = in.JurisdictionID
	certificate.IssuedAt = in.IssuedAt
	certificate.ExpiresAt = in.ExpiresAt
	certificate.Credits = in.Credits
	certificate.AttachmentID = in.AttachmentID

	if err := s.certificateRepo.Update(ctx, certificate); err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	return s.Get(ctx, certificate.ID)
}

func (s *certificateService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.certificateRepo.Delete(ctx, id)
}

func (s *certificateService) ListExpiring(ctx context.Context, userID uint, days int) ([]model.Certificate, error) {
	if days <= 0 {
		days = model.ExpiringWindowDays
	}
	before := time.Now().AddDate(0, 0, days)
	return s.certificateRepo.ListExpiring(ctx, userID, before)
}

func (s *certificateService) OwnerID(ctx context.Context, id uint) (uint, error) {
	certificate, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return certificate.UserID, nil
}

// checkInput validates fields and verifies the referenced jurisdiction and
// attachment exist, with the attachment owned by the certificate's owner.
func (s *certificateService) checkInput(ctx context.Context, ownerID uint, in CertificateInput) error {
	if err := s.validator.Validate(in.Title, in.Number, in.IssuedAt, in.ExpiresAt, in.Credits); err != nil {
		return err
	}

	if in.JurisdictionID != nil {
		if _, err := s.jurisdictionRepo.FindByID(ctx, *in.JurisdictionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("jurisdiction does not exist")
			}
			return fmt.Errorf("find jurisdiction: %w", err)
		}
	}

	if in.AttachmentID != nil {
		file, err := s.fileRepo.FindByID(ctx, *in.AttachmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("attachment does not exist")
			}
			return fmt.Errorf("find attachment: %w", err)
		}
		if file.OwnerID != ownerID {
			return apperrors.ErrForbidden
		}
	}
	return nil
}
