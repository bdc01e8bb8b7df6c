package model

import "time"

// Jurisdiction is reference data: the authority region a certificate is
// issued under (state bar, provincial college, national registry).
type Jurisdiction struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"size:255;not null"`
	Code   string `json:"code" gorm:"uniqueIndex;size:20;not null"`
	Region string `json:"region,omitempty" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
