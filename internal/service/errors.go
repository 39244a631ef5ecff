package service

import "errors"

// Business outcomes of the redirect path. Each maps 1:1 to an HTTP
// status in the controllers; none of them is an application fault and
// none is retryable by the core.
var (
	ErrLinkInactive     = errors.New("link is inactive")
	ErrLinkExpired      = errors.New("link has expired")
	ErrLinkExhausted    = errors.New("link has reached its maximum click limit")
	ErrPasswordRequired = errors.New("link requires password verification")
	ErrInvalidPassword  = errors.New("invalid password")
)
