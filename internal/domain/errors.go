package domain

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate limited")
	ErrNotFound       = errors.New("not found")
	ErrBadResponse    = errors.New("unexpected response shape")
	ErrTapsExhausted  = errors.New("taps exhausted")
	ErrOutdatedClient = errors.New("client version outdated")
)
