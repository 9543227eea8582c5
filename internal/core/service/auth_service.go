package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
)

const (
	DefaultMinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit.
	MaxPasswordLength = 72
)

// AuthService implements registration, login and token authentication.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	throttle  ports.LoginThrottle
	audit     ports.AuditRecorder
	minPwdLen int
	now       func() time.Time
	log       zerolog.Logger

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths cost one hash comparison.
	dummyHash string
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithLoginThrottle enables failed-login throttling.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithAuditRecorder sends an AuditEvent for every register/login/refresh outcome.
func WithAuditRecorder(r ports.AuditRecorder) AuthOption {
	return func(s *AuthService) {
		if r != nil {
			s.audit = r
		}
	}
}

// WithMinPasswordLength overrides DefaultMinPasswordLength.
func WithMinPasswordLength(n int) AuthOption {
	return func(s *AuthService) {
		if n > 0 && n <= MaxPasswordLength {
			s.minPwdLen = n
		}
	}
}

// WithClock replaces time.Now, used when issuing and validating tokens.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		audit:     nopAuditRecorder{},
		minPwdLen: DefaultMinPasswordLength,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if h, err := hasher.Hash("library-system-dummy-password"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Register validates the request, rejects an already registered email,
// stores the hashed password and returns a token for the new user. The token
// is signed before the insert so a failed call persists nothing.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	if err := s.validateRegistration(name, email, password); err != nil {
		s.record(domain.AuditRegister, email, domain.OutcomeInvalidInput)
		return "", err
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.record(domain.AuditRegister, email, domain.OutcomeConflict)
		return "", domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrNotFound):
		return "", s.unexpected(domain.AuditRegister, email, "find user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", s.unexpected(domain.AuditRegister, email, "hash password", err)
	}

	now := s.now().UTC()
	token, err := s.tokens.Issue(email, now)
	if err != nil {
		return "", s.unexpected(domain.AuditRegister, email, "issue token", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration; the unique index decided.
		if errors.Is(err, domain.ErrConflict) {
			s.record(domain.AuditRegister, email, domain.OutcomeConflict)
			return "", domain.ErrEmailTaken
		}
		return "", s.unexpected(domain.AuditRegister, email, "create user", err)
	}

	s.log.Info().Str("email", email).Msg("user registered")
	s.record(domain.AuditRegister, email, domain.OutcomeSuccess)
	return token, nil
}

// Login returns a token when password matches the stored hash for email.
// Unknown email, wrong password and throttled attempts all return
// domain.ErrUnauthenticated.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		s.record(domain.AuditLogin, email, domain.OutcomeUnauthenticated)
		return "", domain.ErrUnauthenticated
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login throttle unavailable, continuing")
		} else if !allowed {
			s.log.Info().Str("email", email).Msg("login throttled")
			s.record(domain.AuditLogin, email, domain.OutcomeThrottled)
			return "", domain.ErrUnauthenticated
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", s.unexpected(domain.AuditLogin, email, "find user", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.loginFailed(ctx, email)
		return "", domain.ErrUnauthenticated
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, email)
		return "", domain.ErrUnauthenticated
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login throttle")
		}
	}

	token, err := s.tokens.Issue(user.Email, s.now().UTC())
	if err != nil {
		return "", s.unexpected(domain.AuditLogin, email, "issue token", err)
	}

	s.record(domain.AuditLogin, email, domain.OutcomeSuccess)
	return token, nil
}

// Authenticate validates token and resolves its subject to a known user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Validate(token, s.now())
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Debug().Str("email", subject).Msg("token subject no longer exists")
			return nil, domain.ErrInvalidToken
		}
		s.log.Error().Err(err).Str("email", subject).Str("op", "find user").Msg("auth operation failed")
		return nil, domain.ErrUnexpected
	}
	return user, nil
}

// Refresh exchanges a valid token for a new one with a fresh expiry.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			s.record(domain.AuditTokenRefresh, "", domain.OutcomeUnauthenticated)
		}
		return "", err
	}

	fresh, err := s.tokens.Issue(user.Email, s.now().UTC())
	if err != nil {
		return "", s.unexpected(domain.AuditTokenRefresh, user.Email, "issue token", err)
	}

	s.record(domain.AuditTokenRefresh, user.Email, domain.OutcomeSuccess)
	return fresh, nil
}

func (s *AuthService) validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return domain.NewValidationError("name is required")
	case email == "":
		return domain.NewValidationError("email is required")
	case len(password) < s.minPwdLen:
		return domain.NewValidationError("password must be at least %d characters", s.minPwdLen)
	case len(password) > MaxPasswordLength:
		return domain.NewValidationError("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string) {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
		}
	}
	s.record(domain.AuditLogin, email, domain.OutcomeUnauthenticated)
}

func (s *AuthService) unexpected(kind domain.AuditKind, email, op string, err error) error {
	s.log.Error().Err(err).Str("email", email).Str("op", op).Msg("auth operation failed")
	s.record(kind, email, domain.OutcomeError)
	return domain.ErrUnexpected
}

func (s *AuthService) record(kind domain.AuditKind, subject string, outcome domain.AuditOutcome) {
	s.audit.Record(domain.AuditEvent{
		Kind:    kind,
		Subject: subject,
		Outcome: outcome,
		At:      s.now().UTC(),
	})
}

type nopAuditRecorder struct{}

func (nopAuditRecorder) Record(domain.AuditEvent) {}
