package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the service layer.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository interface {
	Create(user *User) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByID(id uuid.UUID) (*User, error)
}
