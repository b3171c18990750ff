package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

// TokenStore persists each user's set of registered bearer tokens, keyed by
// token id. Implementations must make Add and Replace atomic per user.
type TokenStore interface {
	// Add registers token and evicts the oldest entries beyond limit.
	Add(ctx context.Context, token *domain.SessionToken, limit int) error
	// Replace swaps oldTokenID for token. ErrNotFound if oldTokenID is gone.
	Replace(ctx context.Context, oldTokenID string, token *domain.SessionToken) error
	Get(ctx context.Context, userID, tokenID string) (*domain.SessionToken, error)
	// Remove deletes exactly one entry. ErrNotFound if absent.
	Remove(ctx context.Context, userID, tokenID string) error
	RemoveAll(ctx context.Context, userID string) error
	Count(ctx context.Context, userID string) (int, error)
}

type tokenRepository struct {
	pool DB
}

// NewTokenRepository returns the Postgres-backed token registry store.
func NewTokenRepository(pool DB) TokenStore {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Add(ctx context.Context, token *domain.SessionToken, limit int) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Serializes concurrent logins of the same user so eviction sees a stable set.
		if _, err := tx.Exec(ctx, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, token.UserID); err != nil {
			return err
		}
		if err := insertToken(ctx, tx, token); err != nil {
			return err
		}
		if limit <= 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `
            DELETE FROM user_tokens
            WHERE user_id=$1 AND token_id IN (
                SELECT token_id FROM user_tokens
                WHERE user_id=$1
                ORDER BY created_at DESC, issued_at DESC
                OFFSET $2
            )`, token.UserID, limit)
		return err
	})
}

func (r *tokenRepository) Replace(ctx context.Context, oldTokenID string, token *domain.SessionToken) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM user_tokens WHERE user_id=$1 AND token_id=$2`, token.UserID, oldTokenID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return insertToken(ctx, tx, token)
	})
}

func insertToken(ctx context.Context, tx pgx.Tx, token *domain.SessionToken) error {
	const query = `
        INSERT INTO user_tokens (user_id, token_id, token_hash, issued_at, expires_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	err := tx.QueryRow(ctx, query,
		token.UserID,
		token.TokenID,
		token.TokenHash,
		token.IssuedAt,
		token.ExpiresAt,
	).Scan(&token.CreatedAt)
	return mapWriteError(err)
}

func (r *tokenRepository) Get(ctx context.Context, userID, tokenID string) (*domain.SessionToken, error) {
	const query = `
        SELECT user_id, token_id, token_hash, issued_at, expires_at, created_at
        FROM user_tokens WHERE user_id=$1 AND token_id=$2`
	var token domain.SessionToken
	if err := r.pool.QueryRow(ctx, query, userID, tokenID).Scan(
		&token.UserID,
		&token.TokenID,
		&token.TokenHash,
		&token.IssuedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Remove(ctx context.Context, userID, tokenID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id=$1 AND token_id=$2`, userID, tokenID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tokenRepository) RemoveAll(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id=$1`, userID)
	return err
}

func (r *tokenRepository) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_tokens WHERE user_id=$1`, userID).Scan(&count)
	return count, err
}
