package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// TokenRepo persists issued tokens. Rows record the signed value verbatim;
// the request path never mutates them once inserted.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

const insertTokenSQL = "INSERT INTO token (id, user_id, token, is_expired, is_revoked) VALUES (?,?,?,?,?)"

// Insert stores a single token row.
func (r *TokenRepo) Insert(ctx context.Context, t *model.Token) error {
	_, err := r.DB.ExecContext(ctx, insertTokenSQL,
		t.ID, t.UserID, t.Token, t.IsExpired, t.IsRevoked)
	return err
}

// InsertPair stores an access and a refresh token row in one transaction so
// a partially persisted session pair is never observable.
func (r *TokenRepo) InsertPair(ctx context.Context, access, refresh *model.Token) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertTokenSQL,
		access.ID, access.UserID, access.Token, access.IsExpired, access.IsRevoked); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, insertTokenSQL,
		refresh.ID, refresh.UserID, refresh.Token, refresh.IsExpired, refresh.IsRevoked); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByValue fetches a token row by exact match on the signed string.
func (r *TokenRepo) GetByValue(ctx context.Context, value string) (model.Token, error) {
	var t model.Token
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, is_expired, is_revoked, created_at FROM token WHERE token=? LIMIT 1",
		value).Scan(&t.ID, &t.UserID, &t.Token, &t.IsExpired, &t.IsRevoked, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

// MarkRevoked flips the revoked flag for a token value. Revocation is an
// external policy hook; nothing in the login/refresh path calls it.
func (r *TokenRepo) MarkRevoked(ctx context.Context, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE token SET is_revoked=TRUE WHERE token=?", value)
	return err
}

// MarkExpired flips the expired flag for a token value ahead of the payload
// expiry, e.g. from a cleanup job.
func (r *TokenRepo) MarkExpired(ctx context.Context, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE token SET is_expired=TRUE WHERE token=?", value)
	return err
}
