package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role tags stored in the `roles` table. Every user is assigned exactly one
// role in the same transaction that creates the user row.
const (
	RoleUser        = "USER"
	RoleApplication = "APPLICATION"
)

// User sources. SYSTEM users registered through signup and always carry a
// password hash; federated sources are provisioned elsewhere and may not.
const (
	SourceSystem = "SYSTEM"
	SourceGoogle = "GOOGLE"
)

// User mirrors the `users` table. PasswordHash and ImageURL are nullable
// because a federated user has no local password.
type User struct {
	ID                  uuid.UUID      // users.id
	Name                string         // users.name
	Email               string         // users.email (unique, immutable)
	IsEnabled           bool           // users.is_enabled
	IsAccountNonExpired bool           // users.is_account_non_expired
	IsAccountNonLocked  bool           // users.is_account_non_locked
	PasswordHash        sql.NullString // users.password_hash (bcrypt)
	ImageURL            sql.NullString // users.image_url
	Source              string         // users.source (SYSTEM|GOOGLE)
	CreatedAt           time.Time      // users.created_at
	UpdatedAt           time.Time      // users.updated_at
}

// Role mirrors the `roles` table (one row per user).
type Role struct {
	ID     uuid.UUID // roles.id
	UserID uuid.UUID // roles.user_id
	Role   string    // roles.role (USER|APPLICATION)
}
