package domain

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is an image attached to an entry, stored as an original plus a
// thumbnail. Paths are object-store keys; URLs are presigned on demand.
type Receipt struct {
	EntryID       uuid.UUID `json:"entryId"`
	UserID        uuid.UUID `json:"userId"`
	OriginalPath  string    `json:"-"`
	ThumbnailPath string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ReceiptRepository interface {
	// Save upserts the receipt record for an entry. One receipt per entry.
	Save(receipt *Receipt) error
	// GetByEntry returns the entry's receipt, or ErrReceiptNotFound.
	GetByEntry(userID, entryID uuid.UUID) (*Receipt, error)
	// Delete removes the record, or ErrReceiptNotFound when absent.
	Delete(userID, entryID uuid.UUID) error
}
