package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/biblioteca/library-system/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	findErr   error
	createErr error
	creates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mirrors the unique index on email.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = "user-" + user.Email
	}
	r.users[stored.Email] = cloneUser(stored)
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

type stubThrottle struct {
	blocked  bool
	checkErr error
	failures map[string]int
	resets   int
}

func (t *stubThrottle) Allowed(_ context.Context, _ string) (bool, error) {
	if t.checkErr != nil {
		return false, t.checkErr
	}
	return !t.blocked, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	if t.failures == nil {
		t.failures = make(map[string]int)
	}
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, _ string) error {
	t.resets++
	return nil
}

type captureAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *captureAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *captureAudit) last() domain.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestAuthService(t *testing.T, repo *stubUserRepo, opts ...AuthOption) (*AuthService, *JWTTokenService) {
	t.Helper()
	tokens, err := NewJWTTokenService(testSecret, "library-system", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	opts = append([]AuthOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop(), opts...), tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)

	token, err := svc.Register(context.Background(), "Alice", "alice@example.com", "pass1234")
	require.NoError(t, err)

	subject, err := tokens.Validate(token, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	stored := repo.users["alice@example.com"]
	require.NotNil(t, stored, "expected user to be persisted")
	assert.NotEqual(t, "pass1234", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass1234")))
	assert.Equal(t, "Alice", stored.Name)
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := []struct {
		name, user, email, password string
	}{
		{"short password", "J", "j@example.com", "ab"},
		{"original short password", "J", "j@example.com", "123"},
		{"missing name", "", "j@example.com", "password"},
		{"missing email", "J", "", "password"},
		{"password over bcrypt limit", "J", "j@example.com", string(make([]byte, MaxPasswordLength+1))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc, _ := newTestAuthService(t, repo)

			_, err := svc.Register(context.Background(), tc.user, tc.email, tc.password)
			require.ErrorIs(t, err, domain.ErrInvalidInput)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Msg)
			assert.Zero(t, repo.creates, "rejected registration must not persist")
			assert.Empty(t, repo.users)
		})
	}
}

func TestAuthService_Register_MinPasswordLengthOption(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo, WithMinPasswordLength(4))

	_, err := svc.Register(context.Background(), "J", "j@example.com", "abcd")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "K", "k@example.com", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "Bob", "bob@example.com", "password")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Bob2", "bob@example.com", "password2")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.creates)
	assert.Len(t, repo.users, 1)
}

func TestAuthService_Register_EmailIsCaseSensitive(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "Bob", "bob@example.com", "password")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Bob", "Bob@example.com", "password")
	assert.NoError(t, err, "different-case email registers separately")
}

// raceRepo reports the email as absent to every caller, so only the insert's
// unique check can stop the second registration.
type raceRepo struct{ *stubUserRepo }

func (r raceRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	repo := raceRepo{newStubUserRepo()}
	tokens, err := NewJWTTokenService(testSecret, "", time.Hour, zerolog.Nop())
	require.NoError(t, err)
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop())

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), "Racer", "race@example.com", "password")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			require.Failf(t, "unexpected error", "%v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, repo.users, 1)
}

func TestAuthService_Register_StoreFailureIsUnexpected(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection reset by peer")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "Eve", "eve@example.com", "password")
	require.ErrorIs(t, err, domain.ErrUnexpected)
	assert.Equal(t, "an unexpected error occurred", err.Error(), "store detail leaked")
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "Carol", "carol@example.com", "s3cretpass")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "carol@example.com", "s3cretpass")
	require.NoError(t, err)

	subject, err := tokens.Validate(token, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", subject)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc, _ := newTestAuthService(t, repo, WithLoginThrottle(throttle))

	_, _ = svc.Register(context.Background(), "Dave", "dave@example.com", "goodpass")
	_, err := svc.Login(context.Background(), "dave@example.com", "badpass1")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 1, throttle.failures["dave@example.com"])
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "ghost@example.com", "password")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "login must not reveal that the email is unknown")
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc, _ := newTestAuthService(t, repo, WithLoginThrottle(throttle))
	_, _ = svc.Register(context.Background(), "Fay", "fay@example.com", "password")

	throttle.blocked = true
	_, err := svc.Login(context.Background(), "fay@example.com", "password")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	throttle.blocked = false
	_, err = svc.Login(context.Background(), "fay@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, 1, throttle.resets)
}

func TestAuthService_Login_ThrottleUnavailableFailsOpen(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{checkErr: errors.New("redis: connection refused")}
	svc, _ := newTestAuthService(t, repo, WithLoginThrottle(throttle))
	_, _ = svc.Register(context.Background(), "Gil", "gil@example.com", "password")

	_, err := svc.Login(context.Background(), "gil@example.com", "password")
	assert.NoError(t, err)
}

func TestAuthService_Login_StoreFailureIsUnexpected(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("server selection timeout")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Login(context.Background(), "x@example.com", "password")
	assert.ErrorIs(t, err, domain.ErrUnexpected)
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)
	token, err := svc.Register(context.Background(), "Gus", "gus@example.com", "password")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "gus@example.com", user.Email)

	orphan, err := tokens.Issue("nobody@example.com", fixedNow)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), orphan)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "unknown subject")

	_, err = svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "garbage token")
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newStubUserRepo()
	audit := &captureAudit{}
	svc, tokens := newTestAuthService(t, repo, WithAuditRecorder(audit))
	token, err := svc.Register(context.Background(), "Hal", "hal@example.com", "password")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), token)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)

	subject, err := tokens.Validate(fresh, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "hal@example.com", subject)

	got := audit.last()
	assert.Equal(t, domain.AuditTokenRefresh, got.Kind)
	assert.Equal(t, domain.OutcomeSuccess, got.Outcome)
}

func TestAuthService_AuditOutcomes(t *testing.T) {
	repo := newStubUserRepo()
	audit := &captureAudit{}
	svc, _ := newTestAuthService(t, repo, WithAuditRecorder(audit))

	_, _ = svc.Register(context.Background(), "Ivy", "ivy@example.com", "password")
	assert.Equal(t, domain.AuditEvent{
		Kind:    domain.AuditRegister,
		Subject: "ivy@example.com",
		Outcome: domain.OutcomeSuccess,
		At:      fixedNow,
	}, audit.last())

	_, _ = svc.Register(context.Background(), "Ivy", "ivy@example.com", "password")
	assert.Equal(t, domain.OutcomeConflict, audit.last().Outcome)

	_, _ = svc.Login(context.Background(), "ivy@example.com", "wrongpass")
	got := audit.last()
	assert.Equal(t, domain.AuditLogin, got.Kind)
	assert.Equal(t, domain.OutcomeUnauthenticated, got.Outcome)
	assert.True(t, got.At.Equal(fixedNow), "audit time comes from the injected clock")
}

// Register, log in twice, fail with a wrong password, then collide on the email.
func TestAuthService_JohnScenario(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(t, repo)
	ctx := context.Background()

	t1, err := svc.Register(ctx, "John", "john@example.com", "password")
	require.NoError(t, err)
	t2, err := svc.Login(ctx, "john@example.com", "password")
	require.NoError(t, err)

	for _, tok := range []string{t1, t2} {
		subject, err := tokens.Validate(tok, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", subject)
	}

	_, err = svc.Login(ctx, "john@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Register(ctx, "J2", "john@example.com", "password2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}
