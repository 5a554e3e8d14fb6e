// Package repository implements persistence for users, roles and issued
// tokens over database/sql. Sentinel errors let higher layers distinguish
// the failure scenarios they are allowed to react to; anything else is an
// opaque storage fault.
package repository

import "errors"

// ErrEmailExists is returned when a user insert collides with the unique
// email index. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")
