package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/core/domain"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubAuthService) Register(context.Context, string, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAuthService) Login(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.authenticateFn(ctx, token)
}

func (s *stubAuthService) Refresh(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func acceptToken(want string, user *domain.User) *stubAuthService {
	return &stubAuthService{authenticateFn: func(_ context.Context, token string) (*domain.User, error) {
		if token != want {
			return nil, domain.ErrInvalidToken
		}
		return user, nil
	}}
}

func runAuth(t *testing.T, svc *stubAuthService, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(svc)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	user := &domain.User{ID: "u1", Name: "John", Email: "john@example.com"}

	called := false
	rec := runAuth(t, acceptToken("good", user), "Bearer good", func(c echo.Context) error {
		called = true
		if c.Get(UserKey) != user {
			t.Fatalf("user not set")
		}
		if c.Get(EmailKey) != "john@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get(TokenKey) != "good" {
			t.Fatalf("token not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	user := &domain.User{Email: "john@example.com"}
	rec := runAuth(t, acceptToken("good", user), "bearer good", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec := runAuth(t, acceptToken("good", nil), "", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, h := range []string{"Token abc", "Bearer", "Bearer ", "abc"} {
		rec := runAuth(t, acceptToken("good", nil), h, mustNotReach(t))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", h, rec.Code)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec := runAuth(t, acceptToken("good", nil), "Bearer forged", mustNotReach(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	svc := &stubAuthService{authenticateFn: func(context.Context, string) (*domain.User, error) {
		return nil, domain.ErrUnexpected
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(svc)(mustNotReach(t))(c)
	if !errors.Is(err, domain.ErrUnexpected) {
		t.Fatalf("expected ErrUnexpected to propagate, got %v", err)
	}
}
