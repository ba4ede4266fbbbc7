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

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// AllocationRequest represents the spending allocation request body
type AllocationRequest struct {
	DebitPct  string `json:"debitPct"`
	CreditPct string `json:"creditPct"`
}

// AllocatedFundsRequest represents the explicit allocated funds request body
type AllocatedFundsRequest struct {
	Debit  string `json:"debit"`
	Credit string `json:"credit"`
}

// GetSummary handles GET /api/v1/budget/summary
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.budgetService.Summary(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to build budget summary")
		return NewInternalError(c, "Failed to build budget summary")
	}

	return c.JSON(http.StatusOK, summary)
}

// GetBankBasedBudget handles GET /api/v1/budget/bank-based
func (h *BudgetHandler) GetBankBasedBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budget, err := h.budgetService.BankBasedBudget(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute bank-based budget")
		return NewInternalError(c, "Failed to compute bank-based budget")
	}

	return c.JSON(http.StatusOK, budget)
}

// GetAllocation handles GET /api/v1/budget/allocation
func (h *BudgetHandler) GetAllocation(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	allocation, err := h.budgetService.GetSpendingAllocation(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get spending allocation")
		return NewInternalError(c, "Failed to get spending allocation")
	}

	return c.JSON(http.StatusOK, allocation)
}

// SetAllocation handles PUT /api/v1/budget/allocation
func (h *BudgetHandler) SetAllocation(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req AllocationRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	debitPct, err := decimal.NewFromString(req.DebitPct)
	if err != nil {
		return NewValidationError(c, "Invalid debit percentage", []ValidationError{
			{Field: "debitPct", Message: "Must be a valid decimal number"},
		})
	}
	creditPct, err := decimal.NewFromString(req.CreditPct)
	if err != nil {
		return NewValidationError(c, "Invalid credit percentage", []ValidationError{
			{Field: "creditPct", Message: "Must be a valid decimal number"},
		})
	}

	allocation, err := h.budgetService.SetSpendingAllocation(userID, debitPct, creditPct)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAllocation) {
			return NewValidationError(c, "Percentages must be non-negative and sum to 100", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to set spending allocation")
		return NewInternalError(c, "Failed to set spending allocation")
	}

	log.Info().Str("user_id", userID.String()).Msg("Spending allocation updated")
	return c.JSON(http.StatusOK, allocation)
}

// GetAllocatedFunds handles GET /api/v1/budget/allocated-funds
func (h *BudgetHandler) GetAllocatedFunds(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	allocated, err := h.budgetService.AllocatedFunds(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get allocated funds")
		return NewInternalError(c, "Failed to get allocated funds")
	}

	return c.JSON(http.StatusOK, allocated)
}

// SetAllocatedFunds handles PUT /api/v1/budget/allocated-funds
func (h *BudgetHandler) SetAllocatedFunds(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req AllocatedFundsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	debit, err := decimal.NewFromString(req.Debit)
	if err != nil {
		return NewValidationError(c, "Invalid debit amount", []ValidationError{
			{Field: "debit", Message: "Must be a valid decimal number"},
		})
	}
	credit, err := decimal.NewFromString(req.Credit)
	if err != nil {
		return NewValidationError(c, "Invalid credit amount", []ValidationError{
			{Field: "credit", Message: "Must be a valid decimal number"},
		})
	}

	allocated, err := h.budgetService.SetAllocatedFunds(userID, debit, credit)
	if err != nil {
		if errors.Is(err, domain.ErrNegativeAmount) {
			return NewValidationError(c, "Amounts must not be negative", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to set allocated funds")
		return NewInternalError(c, "Failed to set allocated funds")
	}

	log.Info().Str("user_id", userID.String()).Msg("Allocated funds updated")
	return c.JSON(http.StatusOK, allocated)
}

// Rollover handles POST /api/v1/budget/rollover
func (h *BudgetHandler) Rollover(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	state, err := h.budgetService.RolloverDailyExcess(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to roll over daily excess")
		return NewInternalError(c, "Failed to roll over daily excess")
	}

	return c.JSON(http.StatusOK, state)
}
