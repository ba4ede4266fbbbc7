package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	userID := uuid.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected uuid.UUID
	}{
		{
			name: "returns user id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: userID,
		},
		{
			name:     "returns nil uuid when not present",
			setup:    func(c echo.Context) {},
			expected: uuid.Nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			result := GetUserID(c)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	m := NewAuthMiddleware("test-secret")
	userID := uuid.New()

	tokenString := signToken(t, "test-secret", userID.String(), time.Now().Add(time.Hour))

	var gotUserID uuid.UUID
	handler := m.Authenticate()(func(c echo.Context) error {
		gotUserID = GetUserID(c)
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotUserID != userID {
		t.Errorf("Expected user ID %v in context, got %v", userID, gotUserID)
	}
}

func TestAuthMiddleware_MissingAuthorizationHeader(t *testing.T) {
	e := echo.New()
	m := NewAuthMiddleware("test-secret")

	handler := m.Authenticate()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("Expected HTTPError, got %T", err)
	}

	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", httpErr.Code)
	}
}

func TestAuthMiddleware_InvalidAuthorizationHeaderFormat(t *testing.T) {
	e := echo.New()
	m := NewAuthMiddleware("test-secret")

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "invalid-token"},
		{"wrong prefix", "Basic token123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := m.Authenticate()(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}

			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", httpErr.Code)
			}
		})
	}
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	e := echo.New()
	m := NewAuthMiddleware("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage token", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", uuid.New().String(), time.Now().Add(time.Hour))},
		{"expired token", signToken(t, "test-secret", uuid.New().String(), time.Now().Add(-time.Hour))},
		{"non-uuid subject", signToken(t, "test-secret", "user-1", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := m.Authenticate()(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("Expected HTTPError, got %T", err)
			}

			if httpErr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", httpErr.Code)
			}
		})
	}
}
