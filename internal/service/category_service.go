package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/websocket"
)

// CategoryService manages the per-type subcategory registry
type CategoryService struct {
	categoryRepo domain.CategoryRepository
	publisher    websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, publisher websocket.EventPublisher) *CategoryService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// List returns the subcategories of one entry-type namespace
func (s *CategoryService) List(userID uuid.UUID, entryType domain.EntryType) ([]*domain.Subcategory, error) {
	if !domain.IsValidEntryType(entryType) {
		return nil, domain.ErrInvalidEntryType
	}
	return s.categoryRepo.ListByType(userID, entryType)
}

// Add appends a subcategory to a namespace. Duplicate values and
// case-insensitive duplicate labels within the namespace are rejected.
func (s *CategoryService) Add(userID uuid.UUID, entryType domain.EntryType, category *domain.Subcategory) (*domain.Subcategory, error) {
	if !domain.IsValidEntryType(entryType) {
		return nil, domain.ErrInvalidEntryType
	}
	if category.Label == "" || category.Value == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.categoryRepo.ListByType(userID, entryType)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Value == category.Value || strings.EqualFold(c.Label, category.Label) {
			return nil, domain.ErrCategoryExists
		}
	}

	if err := s.categoryRepo.Add(userID, entryType, category); err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.CategoryInserted(category))
	return category, nil
}

// Remove deletes a subcategory by value. Removing an absent value is a no-op.
func (s *CategoryService) Remove(userID uuid.UUID, entryType domain.EntryType, value string) error {
	if !domain.IsValidEntryType(entryType) {
		return domain.ErrInvalidEntryType
	}

	if err := s.categoryRepo.Remove(userID, entryType, value); err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.CategoryDeleted(map[string]string{
		"entryType": string(entryType),
		"value":     value,
	}))
	return nil
}
