// Package gate holds the pure decision logic for whether a link is
// reachable: active flag, expiration, click limit, password protection.
package gate

import (
	"time"

	"linkgate/internal/entities"
)

// Decision is the outcome of evaluating a link's gates.
type Decision int

const (
	Allow Decision = iota
	Inactive
	Expired
	Exhausted
	PasswordRequired
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Inactive:
		return "inactive"
	case Expired:
		return "expired"
	case Exhausted:
		return "exhausted"
	case PasswordRequired:
		return "password_required"
	default:
		return "unknown"
	}
}

// Grant is an ephemeral proof that the visitor supplied the correct
// password for a slug. Produced by the verification flow, consumed here.
type Grant struct {
	Slug      string
	Verified  bool
	ExpiresAt time.Time
}

// ValidFor reports whether the grant covers the given slug at the given time.
func (g *Grant) ValidFor(slug string, now time.Time) bool {
	if g == nil || !g.Verified {
		return false
	}
	return g.Slug == slug && now.Before(g.ExpiresAt)
}

// Evaluate runs the gate checks against a link record in a fixed order,
// first match wins:
//
//  1. inactive link
//  2. expired (UTC-normalized comparison)
//  3. click limit reached (authoritative store hits, never the cache shadow)
//  4. password-protected without a valid grant
//
// Expiration is checked before exhaustion on purpose: a link can be both,
// and callers need one deterministic reason code.
func Evaluate(link *entities.Link, now time.Time, grant *Grant) Decision {
	if !link.IsActive {
		return Inactive
	}

	if link.ExpiresAt != nil && !now.UTC().Before(link.ExpiresAt.UTC()) {
		return Expired
	}

	if link.MaxClicks != nil && link.Hits >= *link.MaxClicks {
		return Exhausted
	}

	if link.PasswordProtected() && !grant.ValidFor(link.Slug, now) {
		return PasswordRequired
	}

	return Allow
}
