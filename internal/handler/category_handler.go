package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/service"
)

// CategoryHandler handles subcategory registry HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the add category request body
type CategoryRequest struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// GetCategories handles GET /api/v1/categories/:type
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryType := domain.EntryType(c.Param("type"))
	categories, err := h.categoryService.List(userID, entryType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEntryType) {
			return NewValidationError(c, "Unknown entry type", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}
	if categories == nil {
		categories = []*domain.Subcategory{}
	}

	return c.JSON(http.StatusOK, categories)
}

// AddCategory handles POST /api/v1/categories/:type
func (h *CategoryHandler) AddCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	entryType := domain.EntryType(c.Param("type"))
	category, err := h.categoryService.Add(userID, entryType, &domain.Subcategory{
		Label: req.Label,
		Value: req.Value,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEntryType) {
			return NewValidationError(c, "Unknown entry type", nil)
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "label", Message: "Label and value are required"},
			})
		}
		if errors.Is(err, domain.ErrCategoryExists) {
			return NewConflictError(c, "Category already exists")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to add category")
		return NewInternalError(c, "Failed to add category")
	}

	log.Info().Str("user_id", userID.String()).Str("type", string(entryType)).Str("value", category.Value).Msg("Category added")
	return c.JSON(http.StatusCreated, category)
}

// RemoveCategory handles DELETE /api/v1/categories/:type/:value
func (h *CategoryHandler) RemoveCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryType := domain.EntryType(c.Param("type"))
	value := c.Param("value")

	if err := h.categoryService.Remove(userID, entryType, value); err != nil {
		if errors.Is(err, domain.ErrInvalidEntryType) {
			return NewValidationError(c, "Unknown entry type", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to remove category")
		return NewInternalError(c, "Failed to remove category")
	}

	return c.NoContent(http.StatusNoContent)
}
