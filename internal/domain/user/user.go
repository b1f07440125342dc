package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a platform user.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// NewUser creates a user.
func NewUser(name, email string) *User {
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
}

type Repository interface {
	// Create persists a new user. A duplicate email returns
	// errors.ErrEmailTaken.
	Create(ctx context.Context, u *User) error

	// GetByID returns the user or errors.ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// ExistsByEmail reports whether a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all users.
	List(ctx context.Context) ([]*User, error)

	// Delete removes a user or returns errors.ErrUserNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
