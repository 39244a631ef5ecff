package service

import (
	"context"
	"fmt"
	"time"

	"linkgate/internal/gate"
	"linkgate/internal/repository"
	"linkgate/internal/token"
)

// VerifyService handles the password-verification flow that produces
// the grant the redirect path consumes.
type VerifyService interface {
	// Verify checks the submitted password for a slug and returns a
	// signed grant token on success. The link's other gates are
	// re-checked first so a dead link cannot be unlocked.
	Verify(ctx context.Context, slug, password string) (string, error)
}

type verifyService struct {
	repo   repository.LinkRepository
	grants *token.GrantService
}

// NewVerifyService creates the password verification service.
func NewVerifyService(repo repository.LinkRepository, grants *token.GrantService) VerifyService {
	return &verifyService{
		repo:   repo,
		grants: grants,
	}
}

func (s *verifyService) Verify(ctx context.Context, slug, password string) (string, error) {
	link, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	switch gate.Evaluate(link, time.Now(), nil) {
	case gate.Inactive:
		return "", ErrLinkInactive
	case gate.Expired:
		return "", ErrLinkExpired
	case gate.Exhausted:
		return "", ErrLinkExhausted
	}

	if !gate.VerifyPassword(password, link.PasswordHash) {
		return "", ErrInvalidPassword
	}

	signed, err := s.grants.Issue(slug)
	if err != nil {
		return "", fmt.Errorf("failed to issue grant: %w", err)
	}
	return signed, nil
}
