package auth

import "errors"

// ErrPasswordMismatch is returned when signup passwords disagree. It is the
// only validation error surfaced with its real cause.
var ErrPasswordMismatch = errors.New("passwords must match")

// ErrInvalidCredentials is returned identically for unknown email, wrong
// password, bad signature, expired or revoked token, unknown token value and
// kind mismatch, so callers cannot tell which check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")
