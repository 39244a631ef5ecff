// Package token issues and parses the signed verification-grant tokens
// carried in the per-slug password cookie.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkgate/internal/gate"
)

// GrantTTL is how long a password verification stays valid.
const GrantTTL = time.Hour

// CookieName returns the verification cookie name for a slug.
func CookieName(slug string) string {
	return fmt.Sprintf("link_%s_verified", slug)
}

type grantClaims struct {
	Slug     string `json:"slug"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// GrantService signs and validates verification grants.
type GrantService struct {
	secret []byte
	ttl    time.Duration
}

// NewGrantService creates a grant service with the given signing secret.
func NewGrantService(secret string, ttl time.Duration) *GrantService {
	if ttl <= 0 {
		ttl = GrantTTL
	}
	return &GrantService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured grant lifetime.
func (g *GrantService) TTL() time.Duration {
	return g.ttl
}

// Issue creates a signed grant token for a slug.
func (g *GrantService) Issue(slug string) (string, error) {
	now := time.Now()
	claims := grantClaims{
		Slug:     slug,
		Verified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign grant token: %w", err)
	}
	return signed, nil
}

// Parse validates a grant token and returns the grant it carries.
// Invalid, expired, or tampered tokens return an error.
func (g *GrantService) Parse(tokenStr string) (*gate.Grant, error) {
	var claims grantClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid grant token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid grant token")
	}

	return &gate.Grant{
		Slug:      claims.Slug,
		Verified:  claims.Verified,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
