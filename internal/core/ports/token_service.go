package ports

import "time"

// TokenService issues and validates signed, time-bound identity tokens.
type TokenService interface {
	Issue(subject string, now time.Time) (string, error)
	// Validate returns the token subject, or domain.ErrInvalidToken for any
	// failure (bad signature, malformed, expired).
	Validate(token string, now time.Time) (string, error)
	// SubjectOf decodes the subject without verifying the signature. Only call
	// it on a token that already passed Validate.
	SubjectOf(token string) (string, error)
}

// PasswordHasher abstracts the one-way password hashing scheme.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
