package model

import "time"

// ConnectionStatus represents the state of a peer relationship.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusDeclined ConnectionStatus = "declined"
)

// Connection is a peer relationship between two users. The requester opens
// it, the addressee accepts or declines. One row per ordered pair; the
// unique index rejects duplicate requests in either direction at the store
// (the service checks the reverse direction before creating).
type Connection struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RequesterID uint             `json:"requester_id" gorm:"not null;uniqueIndex:idx_conn_pair"`
	AddresseeID uint             `json:"addressee_id" gorm:"not null;uniqueIndex:idx_conn_pair"`
	Status      ConnectionStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Requester User `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Addressee User `json:"addressee,omitempty" gorm:"foreignKey:AddresseeID"`
}
