package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/service"
)

// ReceiptHandler handles receipt upload and download HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// UploadReceipt handles POST /api/v1/entries/:id/receipt
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing file field", []ValidationError{
			{Field: "file", Message: "A multipart file upload is required"},
		})
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, service.ErrReceiptTooLarge.Error(), nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read upload")
	}

	receipt, err := h.receiptService.Upload(c.Request().Context(), userID, entryID, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEntryNotFound):
			return NewNotFoundError(c, "Entry not found")
		case errors.Is(err, service.ErrStorageDisabled):
			return NewForbiddenError(c, "Receipt storage is not configured")
		case errors.Is(err, service.ErrReceiptTooLarge),
			errors.Is(err, service.ErrInvalidFormat),
			errors.Is(err, service.ErrReceiptTooSmall),
			errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", entryID.String()).Msg("Failed to upload receipt")
		return NewInternalError(c, "Failed to upload receipt")
	}

	log.Info().Str("user_id", userID.String()).Str("entry_id", entryID.String()).Msg("Receipt uploaded")
	return c.JSON(http.StatusCreated, receipt)
}

// GetReceiptURLs handles GET /api/v1/entries/:id/receipt
func (h *ReceiptHandler) GetReceiptURLs(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	urls, err := h.receiptService.URLs(c.Request().Context(), userID, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Receipt not found")
		}
		if errors.Is(err, service.ErrStorageDisabled) {
			return NewForbiddenError(c, "Receipt storage is not configured")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", entryID.String()).Msg("Failed to presign receipt URLs")
		return NewInternalError(c, "Failed to presign receipt URLs")
	}

	return c.JSON(http.StatusOK, urls)
}

// DeleteReceipt handles DELETE /api/v1/entries/:id/receipt
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	if err := h.receiptService.Delete(c.Request().Context(), userID, entryID); err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Receipt not found")
		}
		if errors.Is(err, service.ErrStorageDisabled) {
			return NewForbiddenError(c, "Receipt storage is not configured")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", entryID.String()).Msg("Failed to delete receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Str("user_id", userID.String()).Str("entry_id", entryID.String()).Msg("Receipt deleted")
	return c.NoContent(http.StatusNoContent)
}
