package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrEntryNotFound       = errors.New("entry not found")
	ErrAccountNotFound     = errors.New("bank account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrBudgetStateNotFound = errors.New("budget state not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrDescriptionRequired = errors.New("description is required")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrNegativeAmount      = errors.New("amount must not be negative")
	ErrInvalidEntryType    = errors.New("invalid entry type")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidBillingDay   = errors.New("billing day must be between 1 and 31")
	ErrInvalidAllocation   = errors.New("allocation percentages must sum to 100")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxDescriptionLength = 500
)
