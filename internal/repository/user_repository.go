package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// UserRepo persists user records and their role row.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, is_enabled, is_account_non_expired, is_account_non_locked, password_hash, image_url, source, created_at, updated_at"

// Create inserts the user together with its role in one transaction.
// Both rows land or neither does. The role tag is fixed to USER here;
// APPLICATION roles are provisioned outside this service.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (*model.Role, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, name, email, is_enabled, is_account_non_expired, is_account_non_locked, password_hash, image_url, source) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.IsEnabled, u.IsAccountNonExpired, u.IsAccountNonLocked, u.PasswordHash, u.ImageURL, u.Source)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	role := &model.Role{ID: uuid.New(), UserID: u.ID, Role: model.RoleUser}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO roles (id, user_id, role) VALUES (?,?,?)",
		role.ID, role.UserID, role.Role)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return role, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.IsEnabled, &u.IsAccountNonExpired, &u.IsAccountNonLocked,
		&u.PasswordHash, &u.ImageURL, &u.Source, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.IsEnabled, &u.IsAccountNonExpired, &u.IsAccountNonLocked,
		&u.PasswordHash, &u.ImageURL, &u.Source, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetRoleByUserID fetches the single role row owned by a user.
func (r *UserRepo) GetRoleByUserID(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, role FROM roles WHERE user_id=? LIMIT 1",
		userID).Scan(&role.ID, &role.UserID, &role.Role)
	if err == sql.ErrNoRows {
		return role, ErrNotFound
	}
	return role, err
}
