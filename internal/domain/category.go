package domain

import "github.com/google/uuid"

// Subcategory is a user-defined category inside one entry-type namespace.
// Value is the stable key stored on entries; Label is what the UI shows.
type Subcategory struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type CategoryRepository interface {
	// ListByType returns the subcategories of one entry-type namespace in
	// insertion order.
	ListByType(userID uuid.UUID, entryType EntryType) ([]*Subcategory, error)
	// Add appends a subcategory to the namespace. Uniqueness is enforced by
	// the service layer, not here.
	Add(userID uuid.UUID, entryType EntryType, category *Subcategory) error
	// Remove deletes by value. Removing an absent value is not an error.
	Remove(userID uuid.UUID, entryType EntryType, value string) error
}
