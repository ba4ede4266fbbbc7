package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/service"
)

// BankAccountHandler handles bank-account-related HTTP requests
type BankAccountHandler struct {
	accountService *service.BankAccountService
}

// NewBankAccountHandler creates a new BankAccountHandler
func NewBankAccountHandler(accountService *service.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{accountService: accountService}
}

// BankAccountRequest represents the create/update bank account request body
type BankAccountRequest struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Type         string `json:"type"`
	DebitBalance string `json:"debitBalance,omitempty"`
	CreditLimit  string `json:"creditLimit,omitempty"`
	CreditUsed   string `json:"creditUsed,omitempty"`
	BillingDay   int    `json:"billingDay"`
	PaymentDay   int    `json:"paymentDay"`
}

func (r *BankAccountRequest) toAccount(userID uuid.UUID) (*domain.BankAccount, []ValidationError) {
	var fieldErrors []ValidationError

	parseAmount := func(field, value string) decimal.Decimal {
		if value == "" {
			return decimal.Zero
		}
		amount, err := decimal.NewFromString(value)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: field, Message: "Must be a valid decimal number"})
			return decimal.Zero
		}
		return amount
	}

	account := &domain.BankAccount{
		UserID:       userID,
		Name:         r.Name,
		Icon:         r.Icon,
		Type:         domain.BankAccountType(r.Type),
		DebitBalance: parseAmount("debitBalance", r.DebitBalance),
		CreditLimit:  parseAmount("creditLimit", r.CreditLimit),
		CreditUsed:   parseAmount("creditUsed", r.CreditUsed),
		BillingDay:   r.BillingDay,
		PaymentDay:   r.PaymentDay,
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}
	return account, nil
}

func accountValidationResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidAccountType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: debit, credit, both"},
		})
	case errors.Is(err, domain.ErrNegativeAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "debitBalance", Message: "Balances must not be negative"},
		})
	case errors.Is(err, domain.ErrInvalidBillingDay):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "billingDay", Message: "Billing and payment days must be between 1 and 31"},
		})
	}
	return nil
}

// CreateAccount handles POST /api/v1/accounts
func (h *BankAccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BankAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, fieldErrors := req.toAccount(userID)
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}

	created, err := h.accountService.Create(account)
	if err != nil {
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create bank account")
		return NewInternalError(c, "Failed to create bank account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", created.ID.String()).Str("name", created.Name).Msg("Bank account created")
	return c.JSON(http.StatusCreated, created)
}

// GetAccounts handles GET /api/v1/accounts
func (h *BankAccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	accounts, err := h.accountService.GetAll(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list bank accounts")
		return NewInternalError(c, "Failed to list bank accounts")
	}
	if accounts == nil {
		accounts = []*domain.BankAccount{}
	}

	return c.JSON(http.StatusOK, accounts)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *BankAccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Bank account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to get bank account")
		return NewInternalError(c, "Failed to get bank account")
	}

	return c.JSON(http.StatusOK, account)
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *BankAccountHandler) UpdateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req BankAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, fieldErrors := req.toAccount(userID)
	if fieldErrors != nil {
		return NewValidationError(c, "Validation failed", fieldErrors)
	}
	account.ID = id

	updated, err := h.accountService.Update(account)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Bank account not found")
		}
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to update bank account")
		return NewInternalError(c, "Failed to update bank account")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *BankAccountHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.Delete(userID, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Bank account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to delete bank account")
		return NewInternalError(c, "Failed to delete bank account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Bank account deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetFundsSummary handles GET /api/v1/accounts/summary
func (h *BankAccountHandler) GetFundsSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.accountService.FundsSummary(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to summarize funds")
		return NewInternalError(c, "Failed to summarize funds")
	}

	return c.JSON(http.StatusOK, summary)
}

// GetBilling handles GET /api/v1/accounts/:id/billing
func (h *BankAccountHandler) GetBilling(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	info, err := h.accountService.Billing(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Bank account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to get billing info")
		return NewInternalError(c, "Failed to get billing info")
	}

	return c.JSON(http.StatusOK, info)
}
