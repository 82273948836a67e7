package errors

import (
	"errors"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSlugExists        = errors.New("product slug already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRateLimited       = errors.New("too many requests")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrSessionMissing    = errors.New("no active session")
	ErrSessionExpired    = errors.New("session has expired")
	ErrSessionMalformed  = errors.New("invalid session token")
)
