package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/utils"
)

// RefreshTokenRepo manages the `refresh_tokens` table.  Only the SHA-256
// digest of a token is ever stored; the plain value lives solely in the
// client's cookie or response body.
type RefreshTokenRepo struct{ DB *sql.DB }

// NewRefreshTokenRepo returns a RefreshTokenRepo bound to the database.
func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Store persists the digest of a freshly issued refresh token.
func (r *RefreshTokenRepo) Store(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, utils.HashToken(token), expiresAt)
	return err
}

// Validate looks up a presented refresh token and returns its row when it
// exists, has not expired and has not been revoked.  sql.ErrNoRows means
// the token is unusable for any of those reasons.
func (r *RefreshTokenRepo) Validate(ctx context.Context, token string) (*model.RefreshToken, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		   FROM refresh_tokens
		  WHERE token_hash=? AND revoked_at IS NULL AND expires_at > NOW()
		  LIMIT 1`, utils.HashToken(token))
	var t model.RefreshToken
	if err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Revoke marks a single token as revoked.  Revoking an already revoked or
// unknown token is a no-op.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		utils.HashToken(token))
	return err
}

// RevokeAllForUser revokes every live token of one user, used on logout
// from all devices and on account deactivation.
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
