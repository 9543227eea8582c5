package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

// resourceHooks parameterise resourceService for one entity type T written
// from input type In.
type resourceHooks[T any, In any] struct {
	// prepare validates in and resolves any derived data. It returns a
	// *domain.ValidationError for bad input.
	prepare func(ctx context.Context, in In) (In, error)
	// checkUnique returns an error wrapping domain.ErrConflict when writing in
	// would violate a uniqueness rule. id is empty on create.
	checkUnique func(ctx context.Context, id string, in In) error
	build       func(in In, now time.Time) *T
	apply       func(entity *T, in In, now time.Time)
}

// resourceService enforces the existence and uniqueness rules shared by the
// catalogue entities around a ports.ResourceRepository.
type resourceService[T any, In any] struct {
	name     string
	repo     ports.ResourceRepository[T]
	hooks    resourceHooks[T, In]
	notFound error
	conflict error
	now      func() time.Time
	log      zerolog.Logger
}

func (s *resourceService[T, In]) List(ctx context.Context) ([]*T, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translate("list", err)
	}
	if items == nil {
		items = []*T{}
	}
	return items, nil
}

func (s *resourceService[T, In]) Get(ctx context.Context, id string) (*T, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate("get", err)
	}
	return entity, nil
}

func (s *resourceService[T, In]) Create(ctx context.Context, in In) (*T, error) {
	in, err := s.validate(ctx, "", in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, s.hooks.build(in, s.now().UTC()))
	if err != nil {
		return nil, s.translate("create", err)
	}

	s.log.Info().Str("resource", s.name).Msg("resource created")
	return created, nil
}

// Update resolves id first: an unknown id is reported as not found before the
// input is looked at, and nothing is written.
func (s *resourceService[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate("update", err)
	}

	in, err = s.validate(ctx, id, in)
	if err != nil {
		return nil, err
	}

	s.hooks.apply(entity, in, s.now().UTC())
	updated, err := s.repo.Update(ctx, entity)
	if err != nil {
		return nil, s.translate("update", err)
	}

	s.log.Info().Str("resource", s.name).Str("id", id).Msg("resource updated")
	return updated, nil
}

// Delete is not idempotent: deleting an unknown id reports not found.
func (s *resourceService[T, In]) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.translate("delete", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate("delete", err)
	}

	s.log.Info().Str("resource", s.name).Str("id", id).Msg("resource deleted")
	return nil
}

func (s *resourceService[T, In]) validate(ctx context.Context, id string, in In) (In, error) {
	if s.hooks.prepare != nil {
		prepared, err := s.hooks.prepare(ctx, in)
		if err != nil {
			return in, s.translate("validate", err)
		}
		in = prepared
	}
	if s.hooks.checkUnique != nil {
		if err := s.hooks.checkUnique(ctx, id, in); err != nil {
			return in, s.translate("check unique", err)
		}
	}
	return in, nil
}

// translate maps a lower-layer error onto the domain taxonomy. Anything not
// already typed is logged and replaced by domain.ErrUnexpected.
func (s *resourceService[T, In]) translate(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return s.notFound
	case errors.Is(err, domain.ErrConflict):
		return s.conflict
	}
	s.log.Error().Err(err).Str("resource", s.name).Str("op", op).Msg("resource operation failed")
	return domain.ErrUnexpected
}
