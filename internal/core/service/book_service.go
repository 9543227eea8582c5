package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// bookDraft is a validated BookInput plus the name of the linked client.
type bookDraft struct {
	ports.BookInput
	clientName string
}

type BookService struct {
	core    *resourceService[domain.Book, bookDraft]
	clients ports.ClientRepository
}

func NewBookService(books ports.BookRepository, clients ports.ClientRepository, logger zerolog.Logger) *BookService {
	s := &BookService{clients: clients}
	s.core = &resourceService[domain.Book, bookDraft]{
		name:     "book",
		repo:     books,
		notFound: domain.ErrBookNotFound,
		conflict: domain.ErrConflict,
		now:      time.Now,
		log:      logger,
		hooks: resourceHooks[domain.Book, bookDraft]{
			prepare: s.prepare,
			build:   buildBook,
			apply:   applyBook,
		},
	}
	return s
}

func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.core.List(ctx)
}

func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	return s.core.Get(ctx, id)
}

func (s *BookService) Create(ctx context.Context, in ports.BookInput) (*domain.Book, error) {
	return s.core.Create(ctx, bookDraft{BookInput: in})
}

func (s *BookService) Update(ctx context.Context, id string, in ports.BookInput) (*domain.Book, error) {
	return s.core.Update(ctx, id, bookDraft{BookInput: in})
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	return s.core.Delete(ctx, id)
}

func (s *BookService) prepare(ctx context.Context, d bookDraft) (bookDraft, error) {
	if d.Status == "" {
		d.Status = string(domain.BookAvailable)
	}

	switch {
	case d.Title == "":
		return d, domain.NewValidationError("title is required")
	case d.Author == "":
		return d, domain.NewValidationError("author is required")
	case d.Price < 0:
		return d, domain.NewValidationError("price must not be negative")
	case !domain.BookStatus(d.Status).Valid():
		return d, domain.NewValidationError("status must be one of: available, loaned, reserved")
	}
	if d.PublicationDate != "" {
		if _, err := time.Parse(domain.PublicationDateLayout, d.PublicationDate); err != nil {
			return d, domain.NewValidationError("publication_date must use the YYYY-MM-DD format")
		}
	}

	if d.ClientID == "" {
		return d, nil
	}
	client, err := s.clients.FindByID(ctx, d.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return d, domain.NewValidationError("client %s does not exist", d.ClientID)
		}
		return d, fmt.Errorf("resolve client: %w", err)
	}
	d.clientName = client.FullName()
	return d, nil
}

func buildBook(d bookDraft, now time.Time) *domain.Book {
	b := &domain.Book{CreatedAt: now}
	applyBook(b, d, now)
	return b
}

func applyBook(b *domain.Book, d bookDraft, now time.Time) {
	b.Title = d.Title
	b.Author = d.Author
	b.Editorial = d.Editorial
	b.ISBN = d.ISBN
	b.PublicationDate = d.PublicationDate
	b.Price = d.Price
	b.Status = domain.BookStatus(d.Status)
	b.ClientID = d.ClientID
	b.ClientName = d.clientName
	b.UpdatedAt = now
}
