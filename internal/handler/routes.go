package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carteira/carteira-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *AuthHandler,
	entryHandler *EntryHandler,
	accountHandler *BankAccountHandler,
	categoryHandler *CategoryHandler,
	budgetHandler *BudgetHandler,
	receiptHandler *ReceiptHandler,
	wsHandler *WebSocketHandler,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket change feed; authenticates via query-param token
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes; register and login are public
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())

	protected := []echo.MiddlewareFunc{
		authMiddleware.Authenticate(),
		middleware.RateLimitMiddleware(rateLimiter),
	}

	// Entry routes (protected)
	entries := api.Group("/entries", protected...)
	entries.POST("", entryHandler.CreateEntry)
	entries.GET("", entryHandler.GetEntries)
	entries.POST("/process-fixed", entryHandler.ProcessFixedEntries)
	entries.GET("/:id", entryHandler.GetEntry)
	entries.PUT("/:id", entryHandler.UpdateEntry)
	entries.DELETE("/:id", entryHandler.DeleteEntry)
	entries.PATCH("/:id/toggle-validation", entryHandler.ToggleValidation)
	entries.POST("/:id/receipt", receiptHandler.UploadReceipt)
	entries.GET("/:id/receipt", receiptHandler.GetReceiptURLs)
	entries.DELETE("/:id/receipt", receiptHandler.DeleteReceipt)

	// Bank account routes (protected)
	accounts := api.Group("/accounts", protected...)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/summary", accountHandler.GetFundsSummary)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/billing", accountHandler.GetBilling)

	// Category routes (protected)
	categories := api.Group("/categories", protected...)
	categories.GET("/:type", categoryHandler.GetCategories)
	categories.POST("/:type", categoryHandler.AddCategory)
	categories.DELETE("/:type/:value", categoryHandler.RemoveCategory)

	// Budget routes (protected)
	budget := api.Group("/budget", protected...)
	budget.GET("/summary", budgetHandler.GetSummary)
	budget.GET("/bank-based", budgetHandler.GetBankBasedBudget)
	budget.GET("/allocation", budgetHandler.GetAllocation)
	budget.PUT("/allocation", budgetHandler.SetAllocation)
	budget.GET("/allocated-funds", budgetHandler.GetAllocatedFunds)
	budget.PUT("/allocated-funds", budgetHandler.SetAllocatedFunds)
	budget.POST("/rollover", budgetHandler.Rollover)
}
