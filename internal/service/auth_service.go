package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carteira/carteira-backend/internal/domain"
)

// TokenTTL is how long issued tokens stay valid
const TokenTTL = 7 * 24 * time.Hour

// AuthService handles registration, login and token issuance
type AuthService struct {
	userRepo domain.UserRepository
	secret   []byte
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, secret string) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(secret),
		now:      time.Now,
	}
}

// Register creates a new user with a bcrypt-hashed password
func (s *AuthService) Register(email, name, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidInput
	}
	if len(password) < 8 {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(&domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	})
}

// Authenticate verifies credentials and returns the user.
// Unknown email and wrong password both map to ErrInvalidCredentials.
func (s *AuthService) Authenticate(email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// IssueToken signs a bearer token for the user, valid for TokenTTL
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	})
	return token.SignedString(s.secret)
}
