// Package idp adapts an identity provider's bearer credentials into
// verified external identities. The engine itself never touches token
// signatures; everything below this package only sees the resulting
// (provider, subject) pair. Scope ids smuggled into claims are ignored
// on purpose: a credential proves who the principal is, never which of
// their scopes a request acts in.
package idp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tenantgate.org/internal/authz"
)

// ErrInvalidCredential indicates the bearer credential failed validation.
var ErrInvalidCredential = errors.New("idp: invalid credential")

// Claims are the verified JWT claims this adapter relies on.
type Claims struct {
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens for a single identity provider.
type Verifier struct {
	provider string
	secret   []byte
	now      func() time.Time
}

// Option configures Verifier behavior.
type Option func(*Verifier)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(v *Verifier) {
		if fn != nil {
			v.now = fn
		}
	}
}

// New constructs a verifier for the given provider name and shared secret.
// The provider name doubles as the expected token issuer.
func New(provider, secret string, opts ...Option) (*Verifier, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, errors.New("idp: provider name is required")
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("idp: verification secret is required")
	}
	v := &Verifier{
		provider: provider,
		secret:   []byte(secret),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Provider returns the provider name this verifier accepts tokens from.
func (v *Verifier) Provider() string {
	return v.provider
}

// Verify checks the token signature and registered claims and returns the
// external identity it attests to.
func (v *Verifier) Verify(token string) (authz.ExternalIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return authz.ExternalIdentity{}, ErrInvalidCredential
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCredential
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return authz.ExternalIdentity{}, ErrInvalidCredential
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.ExternalIdentity{}, ErrInvalidCredential
	}
	if err := v.validateClaims(claims); err != nil {
		return authz.ExternalIdentity{}, ErrInvalidCredential
	}
	return authz.ExternalIdentity{
		Provider: v.provider,
		Subject:  strings.TrimSpace(claims.Subject),
	}, nil
}

func (v *Verifier) validateClaims(claims *Claims) error {
	if !strings.EqualFold(claims.Issuer, v.provider) {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	now := v.now().UTC()
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(now.Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return errors.New("token expiry precedes issued-at")
	}
	return nil
}

// Mint signs a development token for the subject. Production tokens come
// from the identity provider itself; this exists for seeds, smoke runs,
// and tests.
func (v *Verifier) Mint(subject string, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("idp: subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("idp: ttl must be greater than zero")
	}
	now := v.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.provider,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
