package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkgate/internal/entities"
	"linkgate/internal/gate"
	"linkgate/internal/repository"
	"linkgate/internal/token"
)

func protectedLink(t *testing.T, password string) *entities.Link {
	t.Helper()
	hash, err := gate.HashPassword(password)
	require.NoError(t, err)

	return &entities.Link{
		ID:           1,
		Slug:         "abc123",
		TargetURL:    "https://example.com",
		IsActive:     true,
		PasswordHash: &hash,
	}
}

func TestVerifyIssuesGrant(t *testing.T) {
	repo := newFakeRepo(protectedLink(t, "hunter2"))
	grants := token.NewGrantService("test-secret", time.Hour)
	svc := NewVerifyService(repo, grants)

	signed, err := svc.Verify(context.Background(), "abc123", "hunter2")
	require.NoError(t, err)

	grant, err := grants.Parse(signed)
	require.NoError(t, err)
	assert.True(t, grant.ValidFor("abc123", time.Now()))
}

func TestVerifyWrongPassword(t *testing.T) {
	repo := newFakeRepo(protectedLink(t, "hunter2"))
	svc := NewVerifyService(repo, token.NewGrantService("test-secret", time.Hour))

	_, err := svc.Verify(context.Background(), "abc123", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestVerifyUnprotectedLinkRejected(t *testing.T) {
	repo := newFakeRepo(testLink())
	svc := NewVerifyService(repo, token.NewGrantService("test-secret", time.Hour))

	_, err := svc.Verify(context.Background(), "abc123", "anything")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestVerifyNotFound(t *testing.T) {
	svc := NewVerifyService(newFakeRepo(), token.NewGrantService("test-secret", time.Hour))

	_, err := svc.Verify(context.Background(), "missing", "hunter2")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestVerifyDeadLinkCannotBeUnlocked(t *testing.T) {
	link := protectedLink(t, "hunter2")
	past := time.Now().Add(-time.Hour)
	link.ExpiresAt = &past

	repo := newFakeRepo(link)
	svc := NewVerifyService(repo, token.NewGrantService("test-secret", time.Hour))

	_, err := svc.Verify(context.Background(), "abc123", "hunter2")
	assert.ErrorIs(t, err, ErrLinkExpired)
}
