package ports

import (
	"context"

	"github.com/biblioteca/library-system/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Refresh(ctx context.Context, token string) (string, error)
}
