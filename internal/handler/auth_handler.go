package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/service"
)

// AuthHandler handles registration, login and the current-user endpoint
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"createdAt"`
}

// TokenResponse represents a successful login or registration
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "email", Message: "A valid email is required"},
				{Field: "password", Message: "Password must be at least 8 characters"},
			})
		}
		if errors.Is(err, domain.ErrEmailTaken) {
			return NewConflictError(c, "Email already registered")
		}
		log.Error().Err(err).Msg("Failed to register user")
		return NewInternalError(c, "Failed to register user")
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to issue token")
		return NewInternalError(c, "Failed to issue token")
	}

	log.Info().Str("user_id", user.ID.String()).Msg("User registered")
	return c.JSON(http.StatusCreated, TokenResponse{Token: token, User: toUserResponse(user)})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to issue token")
		return NewInternalError(c, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: toUserResponse(user)})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get user")
		return NewInternalError(c, "Failed to get user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}
