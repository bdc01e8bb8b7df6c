package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
)

var certificateNumberRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ./-]*$`)

// CertificateValidator checks certificate fields beyond what request
// binding can express.
type CertificateValidator struct{}

// NewCertificateValidator creates a new certificate validator.
func NewCertificateValidator() *CertificateValidator {
	return &CertificateValidator{}
}

// Validate checks a certificate's field combination.
func (v *CertificateValidator) Validate(title, number string, issuedAt, expiresAt *time.Time, credits decimal.Decimal) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Validation("certificate title is required")
	}

	if number != "" && !certificateNumberRegex.MatchString(number) {
		return apperrors.Validation("certificate number has invalid characters")
	}

	if issuedAt != nil && expiresAt != nil && expiresAt.Before(*issuedAt) {
		return apperrors.Validation("certificate expires before it was issued")
	}

	if credits.IsNegative() {
		return apperrors.Validation("credit hours cannot be negative")
	}
	// Stored as decimal(10,2); finer precision would be silently rounded.
	if credits.Exponent() < -2 {
		return apperrors.Validation("credit hours allow at most two decimal places")
	}

	return nil
}

// NormalizeNumber canonicalizes a certificate number for storage: trimmed,
// single-spaced, upper-cased.
func (v *CertificateValidator) NormalizeNumber(number string) string {
	fields := strings.Fields(number)
	return strings.ToUpper(strings.Join(fields, " "))
}
