package model

import "time"

// File is upload metadata; the bytes live in object storage under
// StorageKey. Avatars and certificate attachments both reference rows here.
type File struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OwnerID     uint   `json:"owner_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"size:255;not null"`
	ContentType string `json:"content_type" gorm:"size:100"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"-" gorm:"uniqueIndex;size:255;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
