package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository/memstore"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type gateFixture struct {
	store    *memstore.Store
	clock    *fakeClock
	tokens   *TokenManager
	registry *Registry
	gate     *Gate
}

func newGateFixture(t *testing.T, limit int) *gateFixture {
	t.Helper()
	store := memstore.New()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	tokens := NewTokenManager("test-secret", time.Hour)
	tokens.now = clock.Now

	verifier, err := NewVerifier(store.Users(), bcrypt.MinCost)
	require.NoError(t, err)

	registry := NewRegistry(tokens, store.Tokens(), limit)
	gate := NewGate(GateDependencies{
		Verifier: verifier,
		Registry: registry,
		Tokens:   tokens,
		Users:    store.Users(),
	})
	return &gateFixture{store: store, clock: clock, tokens: tokens, registry: registry, gate: gate}
}

func (f *gateFixture) createUser(t *testing.T, account, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Account: account, PasswordHash: hash, Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.ToDomainError(err).Code, "error: %v", err)
}
