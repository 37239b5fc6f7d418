package models

import "time"

// ContactRecord is the logical unit stored encrypted in the off-chain vault.
type ContactRecord struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Notes   string `json:"notes,omitempty"`
}

// ContactVaultEntry maps a user to their single most-recent encrypted contact
// blob. The entry is overwritten wholesale on each save; Version backs the
// optimistic compare-and-swap that serializes racing savers.
type ContactVaultEntry struct {
	UserAddress string    `gorm:"primaryKey;type:varchar(66)" json:"user_address"`
	BlobID      string    `gorm:"not null" json:"blob_id"`
	Version     uint      `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddressBook is the on-chain object holding a user's saved contact keys.
// Existence is always queried from chain, never cached locally.
type AddressBook struct {
	ObjectID string `json:"object_id"`
	Owner    string `json:"owner"`
}
