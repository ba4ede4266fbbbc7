package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/service"
)

// EntryHandler handles entry-related HTTP requests
type EntryHandler struct {
	entryService *service.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService *service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// EntryRequest represents the create/update entry request body
type EntryRequest struct {
	Description   string   `json:"description"`
	Amount        string   `json:"amount"`
	Date          string   `json:"date,omitempty"`
	Categories    []string `json:"categories"`
	IsPaid        bool     `json:"isPaid"`
	IsFixed       bool     `json:"isFixed"`
	Location      string   `json:"location"`
	Type          string   `json:"type"`
	PaymentMethod string   `json:"paymentType"`
	IsValidated   bool     `json:"isValidated"`
	Bank          string   `json:"bank"`
	BankAccountID string   `json:"bankAccountId,omitempty"`
}

func (r *EntryRequest) toEntry(userID uuid.UUID) (*domain.Entry, []ValidationError) {
	var fieldErrors []ValidationError

	amount := decimal.Zero
	if r.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(r.Amount)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
		}
	}

	var date time.Time
	if r.Date != "" {
		var err error
		date, err = time.Parse(time.RFC3339, r.Date)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "date", Message: "Must be an RFC 3339 timestamp"})
		}
	}

	var bankAccountID *uuid.UUID
	if r.BankAccountID != "" {
		id, err := uuid.Parse(r.BankAccountID)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "bankAccountId", Message: "Must be a valid UUID"})
		} else {
			bankAccountID = &id
		}
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &domain.Entry{
		UserID:        userID,
		Description:   r.Description,
		Amount:        amount,
		Date:          date,
		Categories:    r.Categories,
		IsPaid:        r.IsPaid,
		IsFixed:       r.IsFixed,
		Location:      r.Location,
		Type:          domain.EntryType(r.Type),
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		IsValidated:   r.IsValidated,
		Bank:          r.Bank,
		BankAccountID: bankAccountID,
	}, nil
}

func entryValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrDescriptionRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 500 characters or less"},
		})
	case errors.Is(err, domain.ErrNegativeAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must not be negative"},
		})
	case errors.Is(err, domain.ErrInvalidEntryType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: ganhos, custo-fixo, custo-variado, parcela, gastos"},
		})
	case errors.Is(err, domain.ErrInvalidPayment):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "paymentType", Message: "Payment type must be debito or credito"},
		})
	}
	return nil
}

// CreateEntry handles POST /api/v1/entries
func (h *EntryHandler) CreateEntry(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req EntryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	entry, fieldErrors := req.toEntry(userID)
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	created, err := h.entryService.AddEntry(entry)
	if err != nil {
		if resp := entryValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create entry")
		return NewInternalError(c, "Failed to create entry")
	}

	log.Info().Str("user_id", userID.String()).Str("entry_id", created.ID.String()).Msg("Entry created")
	return c.JSON(http.StatusCreated, created)
}

// parseEntryFilters reads list filters from query parameters
func parseEntryFilters(c echo.Context) (*domain.EntryFilters, error) {
	filters := &domain.EntryFilters{}

	if v := c.QueryParam("type"); v != "" {
		t := domain.EntryType(v)
		filters.Type = &t
	}
	if v := c.QueryParam("paymentType"); v != "" {
		m := domain.PaymentMethod(v)
		filters.PaymentMethod = &m
	}
	if v := c.QueryParam("bankAccountId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		filters.BankAccountID = &id
	}
	filters.ValidatedOnly = c.QueryParam("validated") == "true"
	filters.FixedOnly = c.QueryParam("fixed") == "true"

	if v := c.QueryParam("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		filters.StartDate = &t
	}
	if v := c.QueryParam("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		filters.EndDate = &t
	}
	return filters, nil
}

// GetEntries handles GET /api/v1/entries
func (h *EntryHandler) GetEntries(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseEntryFilters(c)
	if err != nil {
		return NewValidationError(c, "Invalid filter parameters", nil)
	}

	entries, err := h.entryService.List(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list entries")
		return NewInternalError(c, "Failed to list entries")
	}
	if entries == nil {
		entries = []*domain.Entry{}
	}

	return c.JSON(http.StatusOK, entries)
}

// GetEntry handles GET /api/v1/entries/:id
func (h *EntryHandler) GetEntry(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	entry, err := h.entryService.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return NewNotFoundError(c, "Entry not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", id.String()).Msg("Failed to get entry")
		return NewInternalError(c, "Failed to get entry")
	}

	return c.JSON(http.StatusOK, entry)
}

// UpdateEntry handles PUT /api/v1/entries/:id
func (h *EntryHandler) UpdateEntry(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	var req EntryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	entry, fieldErrors := req.toEntry(userID)
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}
	entry.ID = id

	updated, err := h.entryService.UpdateEntry(entry)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return NewNotFoundError(c, "Entry not found")
		}
		if resp := entryValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", id.String()).Msg("Failed to update entry")
		return NewInternalError(c, "Failed to update entry")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteEntry handles DELETE /api/v1/entries/:id
func (h *EntryHandler) DeleteEntry(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	if err := h.entryService.RemoveEntry(userID, id); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return NewNotFoundError(c, "Entry not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", id.String()).Msg("Failed to delete entry")
		return NewInternalError(c, "Failed to delete entry")
	}

	log.Info().Str("user_id", userID.String()).Str("entry_id", id.String()).Msg("Entry deleted")
	return c.NoContent(http.StatusNoContent)
}

// ToggleValidation handles PATCH /api/v1/entries/:id/toggle-validation
func (h *EntryHandler) ToggleValidation(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid entry ID", nil)
	}

	entry, err := h.entryService.ToggleValidation(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return NewNotFoundError(c, "Entry not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("entry_id", id.String()).Msg("Failed to toggle validation")
		return NewInternalError(c, "Failed to toggle validation")
	}

	return c.JSON(http.StatusOK, entry)
}

// ProcessFixedEntries handles POST /api/v1/entries/process-fixed
func (h *EntryHandler) ProcessFixedEntries(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	created, err := h.entryService.ProcessMonthlyFixedEntries(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to process fixed entries")
		return NewInternalError(c, "Failed to process fixed entries")
	}
	if created == nil {
		created = []*domain.Entry{}
	}

	log.Info().Str("user_id", userID.String()).Int("created", len(created)).Msg("Fixed entries processed")
	return c.JSON(http.StatusOK, created)
}
