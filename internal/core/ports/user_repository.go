package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user has exactly this email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create persists a new user. A duplicate email surfaces as domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
