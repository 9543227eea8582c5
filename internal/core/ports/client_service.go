package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// ClientInput carries every writable client field. Update applies all of them.
type ClientInput struct {
	Name        string
	LastName    string
	Email       string
	PhoneNumber string
}

type ClientService interface {
	List(ctx context.Context) ([]*domain.Client, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Create(ctx context.Context, in ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id string, in ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}
