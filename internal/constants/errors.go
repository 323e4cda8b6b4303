package constants

import "errors"

// Token inspection errors shared by the auth and client layers.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
)
