package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// BookInput carries every writable book field. Update applies all of them.
type BookInput struct {
	Title           string
	Author          string
	Editorial       string
	ISBN            string
	PublicationDate string
	Price           float64
	Status          string
	ClientID        string
}

type BookService interface {
	List(ctx context.Context) ([]*domain.Book, error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Create(ctx context.Context, in BookInput) (*domain.Book, error)
	Update(ctx context.Context, id string, in BookInput) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
}
