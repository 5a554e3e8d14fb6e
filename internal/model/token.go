package model

import (
	"time"

	"github.com/google/uuid"
)

// Token mirrors the `token` table. The Token column stores the signed string
// verbatim; lookups are exact-match on it. A row is usable only while both
// IsExpired and IsRevoked are false, regardless of what the signed payload
// says. Rows are never updated by the request path; the flag setters exist
// for an external revocation policy.
type Token struct {
	ID        uuid.UUID // token.id
	UserID    uuid.UUID // token.user_id
	Token     string    // token.token (signed value, verbatim)
	IsExpired bool      // token.is_expired
	IsRevoked bool      // token.is_revoked
	CreatedAt time.Time // token.created_at
}
