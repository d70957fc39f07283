package entity

import "errors"

// Standard domain errors
var (
	ErrInvalidRequest      = errors.New("invalid request parameters")
	ErrBudgetExceeded      = errors.New("token budget exceeded for user")
	ErrRateLimited         = errors.New("provider rate limit hit")
	ErrProviderTimeout     = errors.New("provider call timed out")
	ErrProviderUnavailable = errors.New("no model provider configured")
)
