package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// MinSecretLength is the shortest HS256 signing secret accepted.
const MinSecretLength = 32

const defaultTokenTTL = 24 * time.Hour

var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)

// JWTTokenService issues HS256-signed compact JWTs whose subject is the user
// email. A token issued at t0 is valid exactly while now < t0+TTL.
type JWTTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewJWTTokenService returns a token service signing with secret. The secret
// is copied and held read-only for the lifetime of the service.
func NewJWTTokenService(secret, issuer string, ttl time.Duration, log zerolog.Logger) (*JWTTokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTTokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		log:    log,
	}, nil
}

// TTL returns the lifetime given to issued tokens.
func (s *JWTTokenService) TTL() time.Duration { return s.ttl }

// tokenClaims carries the exact expiry instant next to the standard exp
// claim, which only has one-second resolution.
type tokenClaims struct {
	jwt.RegisteredClaims
	ExpiresAtNano int64 `json:"exp_ns"`
}

// ceilSecond rounds t up to a whole second so exp never precedes exp_ns.
func ceilSecond(t time.Time) time.Time {
	whole := t.Truncate(time.Second)
	if whole.Before(t) {
		whole = whole.Add(time.Second)
	}
	return whole
}

func (s *JWTTokenService) Issue(subject string, now time.Time) (string, error) {
	if subject == "" {
		return "", errors.New("token: empty subject")
	}

	expiresAt := now.Add(s.ttl)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expiresAt)),
			ID:        uuid.NewString(),
		},
		ExpiresAtNano: expiresAt.UnixNano(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry (valid while
// now < exp_ns). Every failure collapses to domain.ErrInvalidToken; the cause is
// only logged.
func (s *JWTTokenService) Validate(token string, now time.Time) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || parsed == nil || !parsed.Valid {
		s.log.Debug().Err(err).Str("reason", rejectReason(err)).Msg("token rejected")
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		s.log.Debug().Str("reason", "missing_subject").Msg("token rejected")
		return "", domain.ErrInvalidToken
	}
	if claims.ExpiresAtNano == 0 || !now.Before(time.Unix(0, claims.ExpiresAtNano)) {
		s.log.Debug().Str("reason", "expired").Msg("token rejected")
		return "", domain.ErrInvalidToken
	}

	return claims.Subject, nil
}

func (s *JWTTokenService) SubjectOf(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// rejectReason classifies a parse failure for internal logs only.
func rejectReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing_claim"
	default:
		return "invalid"
	}
}
