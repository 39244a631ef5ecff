package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkgate/internal/entities"
)

func activeLink() *entities.Link {
	return &entities.Link{
		ID:        1,
		Slug:      "abc123",
		TargetURL: "https://example.com",
		IsActive:  true,
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestEvaluateAllow(t *testing.T) {
	assert.Equal(t, Allow, Evaluate(activeLink(), time.Now(), nil))
}

func TestEvaluateInactive(t *testing.T) {
	link := activeLink()
	link.IsActive = false

	// Inactive wins regardless of every other field
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past
	link.MaxClicks = int64Ptr(1)
	link.Hits = 10
	link.PasswordHash = strPtr("$2a$10$hash")

	assert.Equal(t, Inactive, Evaluate(link, time.Now(), nil))
}

func TestEvaluateExpired(t *testing.T) {
	link := activeLink()
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past

	assert.Equal(t, Expired, Evaluate(link, time.Now(), nil))
}

func TestEvaluateExpiredAtExactInstant(t *testing.T) {
	link := activeLink()
	now := time.Now()
	link.ExpiresAt = &now

	// now >= expiresAt counts as expired
	assert.Equal(t, Expired, Evaluate(link, now, nil))
}

func TestEvaluateExpirationNormalizesTimezones(t *testing.T) {
	link := activeLink()

	// Expiry an hour in the past, expressed in a +10h zone so the wall
	// clock reads "in the future" unless both sides are normalized
	zone := time.FixedZone("ahead", 10*3600)
	expires := time.Now().Add(-time.Hour).In(zone)
	link.ExpiresAt = &expires

	assert.Equal(t, Expired, Evaluate(link, time.Now(), nil))
}

func TestEvaluateNotYetExpired(t *testing.T) {
	link := activeLink()
	future := time.Now().Add(time.Hour)
	link.ExpiresAt = &future

	assert.Equal(t, Allow, Evaluate(link, time.Now(), nil))
}

func TestEvaluateExpirationPrecedesExhaustion(t *testing.T) {
	link := activeLink()
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past
	link.MaxClicks = int64Ptr(5)
	link.Hits = 10

	assert.Equal(t, Expired, Evaluate(link, time.Now(), nil))
}

func TestEvaluateExhausted(t *testing.T) {
	link := activeLink()
	link.MaxClicks = int64Ptr(5)

	link.Hits = 4
	assert.Equal(t, Allow, Evaluate(link, time.Now(), nil))

	link.Hits = 5
	assert.Equal(t, Exhausted, Evaluate(link, time.Now(), nil))

	link.Hits = 6
	assert.Equal(t, Exhausted, Evaluate(link, time.Now(), nil))
}

func TestEvaluatePasswordRequired(t *testing.T) {
	link := activeLink()
	link.PasswordHash = strPtr("$2a$10$hash")

	assert.Equal(t, PasswordRequired, Evaluate(link, time.Now(), nil))
}

func TestEvaluateEmptyPasswordHashIsNotProtected(t *testing.T) {
	link := activeLink()
	link.PasswordHash = strPtr("")

	assert.Equal(t, Allow, Evaluate(link, time.Now(), nil))
}

func TestEvaluatePasswordWithValidGrant(t *testing.T) {
	link := activeLink()
	link.PasswordHash = strPtr("$2a$10$hash")

	grant := &Grant{
		Slug:      "abc123",
		Verified:  true,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	assert.Equal(t, Allow, Evaluate(link, time.Now(), grant))
}

func TestEvaluatePasswordWithWrongSlugGrant(t *testing.T) {
	link := activeLink()
	link.PasswordHash = strPtr("$2a$10$hash")

	grant := &Grant{
		Slug:      "other-slug",
		Verified:  true,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	assert.Equal(t, PasswordRequired, Evaluate(link, time.Now(), grant))
}

func TestEvaluatePasswordWithExpiredGrant(t *testing.T) {
	link := activeLink()
	link.PasswordHash = strPtr("$2a$10$hash")

	grant := &Grant{
		Slug:      "abc123",
		Verified:  true,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	assert.Equal(t, PasswordRequired, Evaluate(link, time.Now(), grant))
}

func TestGrantValidFor(t *testing.T) {
	var nilGrant *Grant
	assert.False(t, nilGrant.ValidFor("abc123", time.Now()))

	unverified := &Grant{Slug: "abc123", ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, unverified.ValidFor("abc123", time.Now()))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword("hunter2", &hash))
	assert.False(t, VerifyPassword("wrong", &hash))
	assert.False(t, VerifyPassword("", &hash))
	assert.False(t, VerifyPassword("hunter2", nil))

	empty := ""
	assert.False(t, VerifyPassword("hunter2", &empty))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("abc")
	assert.Error(t, err)
}
