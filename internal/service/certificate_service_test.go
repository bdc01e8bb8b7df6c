package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

type certificateServiceDeps struct {
	certificates  *MockCertificateRepository
	jurisdictions *MockJurisdictionRepository
	files         *MockFileRepository
}

func newCertificateServiceForTest() (CertificateService, *certificateServiceDeps) {
	d := &certificateServiceDeps{
		certificates:  new(MockCertificateRepository),
		jurisdictions: new(MockJurisdictionRepository),
		files:         new(MockFileRepository),
	}
	return NewCertificateService(d.certificates, d.jurisdictions, d.files), d
}

func TestCertificateService_Create(t *testing.T) {
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expires := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	jurisdictionID := uint(4)
	attachmentID := uint(8)

	tests := []struct {
		name      string
		in        CertificateInput
		setupMock func(d *certificateServiceDeps)
		wantErr   error
	}{
		{
			name: "valid certificate",
			in: CertificateInput{
				Title:          "CPR Certification",
				Number:         " crt-2024  001 ",
				Authority:      "Red Cross",
				JurisdictionID: &jurisdictionID,
				IssuedAt:       &issued,
				ExpiresAt:      &expires,
				Credits:        decimal.RequireFromString("12.5"),
			},
			setupMock: func(d *certificateServiceDeps) {
				d.jurisdictions.On("FindByID", mock.Anything, jurisdictionID).
					Return(&model.Jurisdiction{ID: jurisdictionID}, nil)
				d.certificates.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Certificate) bool {
					// The number is stored canonicalized.
					return c.Number == "CRT-2024 001" && c.UserID == 1
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.Certificate).ID = 3
				}).Return(nil)
				d.certificates.On("FindByID", mock.Anything, uint(3)).
					Return(&model.Certificate{ID: 3, UserID: 1, Title: "CPR Certification"}, nil)
			},
		},
		{
			name: "empty title",
			in: CertificateInput{
				Number: "X-1",
			},
			setupMock: func(d *certificateServiceDeps) {},
			wantErr:   apperrors.ErrValidation,
		},
		{
			name: "expires before issued",
			in: CertificateInput{
				Title:     "Backwards",
				IssuedAt:  &expires,
				ExpiresAt: &issued,
			},
			setupMock: func(d *certificateServiceDeps) {},
			wantErr:   apperrors.ErrValidation,
		},
		{
			name: "negative credits",
			in: CertificateInput{
				Title:   "Negative",
				Credits: decimal.RequireFromString("-1"),
			},
			setupMock: func(d *certificateServiceDeps) {},
			wantErr:   apperrors.ErrValidation,
		},
		{
			name: "credits beyond two decimal places",
			in: CertificateInput{
				Title:   "Precise",
				Credits: decimal.RequireFromString("1.125"),
			},
			setupMock: func(d *certificateServiceDeps) {},
			wantErr:   apperrors.ErrValidation,
		},
		{
			name: "unknown jurisdiction",
			in: CertificateInput{
				Title:          "Misfiled",
				JurisdictionID: &jurisdictionID,
			},
			setupMock: func(d *certificateServiceDeps) {
				d.jurisdictions.On("FindByID", mock.Anything, jurisdictionID).
					Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "attachment owned by someone else",
			in: CertificateInput{
				Title:        "Borrowed",
				AttachmentID: &attachmentID,
			},
			setupMock: func(d *certificateServiceDeps) {
				d.files.On("FindByID", mock.Anything, attachmentID).
					Return(&model.File{ID: attachmentID, OwnerID: 99}, nil)
			},
			wantErr: apperrors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newCertificateServiceForTest()
			tt.setupMock(d)

			certificate, err := svc.Create(context.Background(), 1, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, certificate)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, certificate)
			}
			d.certificates.AssertExpectations(t)
			d.jurisdictions.AssertExpectations(t)
			d.files.AssertExpectations(t)
		})
	}
}

func TestCertificateService_Update(t *testing.T) {
	t.Run("unknown certificate", func(t *testing.T) {
		svc, d := newCertificateServiceForTest()
		d.certificates.On("FindByID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Update(context.Background(), 3, CertificateInput{Title: "X"})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("attachment check uses the stored owner", func(t *testing.T) {
		svc, d := newCertificateServiceForTest()
		attachmentID := uint(8)
		d.certificates.On("FindByID", mock.Anything, uint(3)).
			Return(&model.Certificate{ID: 3, UserID: 1, Title: "Old"}, nil)
		d.files.On("FindByID", mock.Anything, attachmentID).
			Return(&model.File{ID: attachmentID, OwnerID: 1}, nil)
		d.certificates.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Certificate) bool {
			return c.Title == "Renewed" && c.AttachmentID != nil && *c.AttachmentID == attachmentID
		})).Return(nil)

		certificate, err := svc.Update(context.Background(), 3, CertificateInput{
			Title:        "Renewed",
			AttachmentID: &attachmentID,
		})

		assert.NoError(t, err)
		assert.NotNil(t, certificate)
		d.certificates.AssertExpectations(t)
	})
}

func TestCertificateService_ListExpiring(t *testing.T) {
	svc, d := newCertificateServiceForTest()
	// days <= 0 falls back to the default window.
	d.certificates.On("ListExpiring", mock.Anything, uint(1), mock.MatchedBy(func(before time.Time) bool {
		lo := time.Now().AddDate(0, 0, model.ExpiringWindowDays-1)
		hi := time.Now().AddDate(0, 0, model.ExpiringWindowDays+1)
		return before.After(lo) && before.Before(hi)
	})).Return([]model.Certificate{{ID: 3}}, nil)

	certificates, err := svc.ListExpiring(context.Background(), 1, 0)

	assert.NoError(t, err)
	assert.Len(t, certificates, 1)
	d.certificates.AssertExpectations(t)
}

func TestCertificateService_OwnerID(t *testing.T) {
	svc, d := newCertificateServiceForTest()
	d.certificates.On("FindByID", mock.Anything, uint(3)).
		Return(&model.Certificate{ID: 3, UserID: 7}, nil)

	ownerID, err := svc.OwnerID(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), ownerID)
}

func TestCertificateValidator_NormalizeNumber(t *testing.T) {
	v := NewCertificateValidator()

	assert.Equal(t, "CRT-2024 001", v.NormalizeNumber(" crt-2024  001 "))
	assert.Equal(t, "", v.NormalizeNumber("   "))
}
