package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CertificateStatus is derived from the expiry date, never stored.
type CertificateStatus string

const (
	CertificateStatusActive   CertificateStatus = "active"
	CertificateStatusExpiring CertificateStatus = "expiring"
	CertificateStatusExpired  CertificateStatus = "expired"
)

// ExpiringWindowDays is the lead time within which a certificate counts as
// expiring for dashboards and notifications.
const ExpiringWindowDays = 30

// Certificate is a professional certificate held by a user, the unit of
// compliance tracking. Credits records CPD/CE credit hours, which are
// fractional in most jurisdictions.
type Certificate struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"not null;index"`
	Title          string          `json:"title" gorm:"size:255;not null"`
	Number         string          `json:"number" gorm:"size:100"`
	Authority      string          `json:"authority" gorm:"size:255"`
	JurisdictionID *uint           `json:"jurisdiction_id,omitempty" gorm:"index"`
	IssuedAt       *time.Time      `json:"issued_at,omitempty"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty" gorm:"index"`
	Credits        decimal.Decimal `json:"credits" gorm:"type:decimal(10,2);not null;default:0"`
	AttachmentID   *uint           `json:"attachment_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User         User          `json:"-" gorm:"foreignKey:UserID"`
	Jurisdiction *Jurisdiction `json:"jurisdiction,omitempty" gorm:"foreignKey:JurisdictionID"`
	Attachment   *File         `json:"-" gorm:"foreignKey:AttachmentID"`
}

// Status derives the compliance state from ExpiresAt at the given instant.
func (c *Certificate) Status(now time.Time) CertificateStatus {
	if c.ExpiresAt == nil {
		return CertificateStatusActive
	}
	if c.ExpiresAt.Before(now) {
		return CertificateStatusExpired
	}
	if c.ExpiresAt.Before(now.AddDate(0, 0, ExpiringWindowDays)) {
		return CertificateStatusExpiring
	}
	return CertificateStatusActive
}
