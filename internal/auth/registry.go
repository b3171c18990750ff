package auth

import (
	"context"
	"errors"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
)

// ErrSessionNotFound is returned when a token id is not in the user's set.
var ErrSessionNotFound = errors.New("session not registered")

// Registry tracks which issued tokens are still valid for each user.
type Registry struct {
	tokens *TokenManager
	store  repository.TokenStore
	limit  int
}

// NewRegistry binds the signer to a token store. limit bounds the number of
// concurrent sessions per user; zero disables the bound.
func NewRegistry(tokens *TokenManager, store repository.TokenStore, limit int) *Registry {
	return &Registry{tokens: tokens, store: store, limit: limit}
}

func sessionFor(userID string, issued *IssuedToken) *domain.SessionToken {
	return &domain.SessionToken{
		UserID:    userID,
		TokenID:   issued.ID,
		TokenHash: hashToken(issued.Token),
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
}

// Issue signs a token for user and adds it to the user's set.
func (r *Registry) Issue(ctx context.Context, user *domain.User) (*IssuedToken, error) {
	issued, err := r.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := r.store.Add(ctx, sessionFor(user.ID, issued), r.limit); err != nil {
		return nil, err
	}
	return issued, nil
}

// Extend signs a replacement for oldTokenID and swaps it in atomically.
// The set never grows on extend.
func (r *Registry) Extend(ctx context.Context, user *domain.User, oldTokenID string) (*IssuedToken, error) {
	issued, err := r.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := r.store.Replace(ctx, oldTokenID, sessionFor(user.ID, issued)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return issued, nil
}

// Revoke removes exactly one entry.
func (r *Registry) Revoke(ctx context.Context, userID, tokenID string) error {
	if err := r.store.Remove(ctx, userID, tokenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// RevokeAll removes every entry of the user.
func (r *Registry) RevokeAll(ctx context.Context, userID string) error {
	return r.store.RemoveAll(ctx, userID)
}

// IsRegistered reports whether raw is the token stored under (userID, tokenID).
func (r *Registry) IsRegistered(ctx context.Context, userID, tokenID, raw string) (bool, error) {
	entry, err := r.store.Get(ctx, userID, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return tokenMatches(raw, entry.TokenHash), nil
}

// Count returns the number of live sessions for the user.
func (r *Registry) Count(ctx context.Context, userID string) (int, error) {
	return r.store.Count(ctx, userID)
}
