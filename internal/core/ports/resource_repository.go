package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// ResourceRepository defines the persistence operations shared by every
// catalogue entity. Implementations return an error wrapping domain.ErrNotFound
// for unknown ids and domain.ErrConflict for unique-index violations.
type ResourceRepository[T any] interface {
	List(ctx context.Context) ([]*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type BookRepository interface {
	ResourceRepository[domain.Book]
}

type ClientRepository interface {
	ResourceRepository[domain.Client]
	// FindByEmail returns domain.ErrClientNotFound when no client has exactly this email.
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
}
