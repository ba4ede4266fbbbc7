package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/testutil"
)

const testSecret = "test-secret"

func TestRegister(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewAuthService(repo, testSecret)

	user, err := svc.Register("  Maria@Example.COM ", "Maria", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "maria@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")) != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestRegister_Validation(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewAuthService(repo, testSecret)

	if _, err := svc.Register("not-an-email", "x", "hunter2hunter2"); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.Register("a@b.com", "x", "short"); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewAuthService(repo, testSecret)

	if _, err := svc.Register("a@b.com", "x", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register("a@b.com", "y", "hunter2hunter2"); err != domain.ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewAuthService(repo, testSecret)

	registered, err := svc.Register("a@b.com", "x", "hunter2hunter2")
	if err != nil {
		t.Fatal(err)
	}

	user, err := svc.Authenticate("A@B.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Error("authenticated as the wrong user")
	}

	if _, err := svc.Authenticate("a@b.com", "wrong-password"); err != domain.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate("nobody@b.com", "hunter2hunter2"); err != domain.ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestIssueToken(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewAuthService(repo, testSecret)
	issued := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	user := &domain.User{ID: uuid.New()}
	tokenString, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return issued }))
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}

	claims := token.Claims.(*jwt.RegisteredClaims)
	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(TokenTTL)) {
		t.Errorf("expected expiry %s, got %s", issued.Add(TokenTTL), claims.ExpiresAt.Time)
	}
}
