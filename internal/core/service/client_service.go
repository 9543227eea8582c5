package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// ClientService manages clients and keeps client emails unique. The service
// check gives a clean Conflict in the common case; the unique index on email
// catches concurrent writers.
type ClientService struct {
	core    *resourceService[domain.Client, ports.ClientInput]
	clients ports.ClientRepository
}

func NewClientService(clients ports.ClientRepository, logger zerolog.Logger) *ClientService {
	s := &ClientService{clients: clients}
	s.core = &resourceService[domain.Client, ports.ClientInput]{
		name:     "client",
		repo:     clients,
		notFound: domain.ErrClientNotFound,
		conflict: domain.ErrClientEmailTaken,
		now:      time.Now,
		log:      logger,
		hooks: resourceHooks[domain.Client, ports.ClientInput]{
			prepare:     validateClient,
			checkUnique: s.checkEmail,
			build:       buildClient,
			apply:       applyClient,
		},
	}
	return s
}

func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.core.List(ctx)
}

func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	return s.core.Get(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
	return s.core.Create(ctx, in)
}

func (s *ClientService) Update(ctx context.Context, id string, in ports.ClientInput) (*domain.Client, error) {
	return s.core.Update(ctx, id, in)
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	return s.core.Delete(ctx, id)
}

// checkEmail rejects an email held by a client other than id.
func (s *ClientService) checkEmail(ctx context.Context, id string, in ports.ClientInput) error {
	existing, err := s.clients.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != id {
		return domain.ErrClientEmailTaken
	}
	return nil
}

func validateClient(_ context.Context, in ports.ClientInput) (ports.ClientInput, error) {
	switch {
	case in.Name == "":
		return in, domain.NewValidationError("name is required")
	case in.Email == "":
		return in, domain.NewValidationError("email is required")
	}
	return in, nil
}

func buildClient(in ports.ClientInput, now time.Time) *domain.Client {
	c := &domain.Client{CreatedAt: now}
	applyClient(c, in, now)
	return c
}

func applyClient(c *domain.Client, in ports.ClientInput, now time.Time) {
	c.Name = in.Name
	c.LastName = in.LastName
	c.Email = in.Email
	c.PhoneNumber = in.PhoneNumber
	c.UpdatedAt = now
}
