package entities

import "time"

// Link represents a short link record in the database.
// The redirect path reads it; all other fields are owned by the
// external management API.
type Link struct {
	ID           int64      `json:"id"`
	Slug         string     `json:"slug"`
	TargetURL    string     `json:"target_url"`
	IsActive     bool       `json:"is_active"`
	Hits         int64      `json:"hits"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`    // Pointer allows nil (no expiration)
	PasswordHash *string    `json:"-"`                       // Pointer allows nil (no password gate)
	MaxClicks    *int64     `json:"max_clicks,omitempty"`    // Pointer allows nil (no click limit)
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PasswordProtected reports whether the link has an active password gate.
func (l *Link) PasswordProtected() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}
