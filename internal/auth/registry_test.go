package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

func TestRegistryIssueAndMembership(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "pw", domain.RoleMember)

	issued, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)

	ok, err := f.registry.IsRegistered(ctx, user.ID, issued.ID, issued.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.registry.IsRegistered(ctx, user.ID, issued.ID, issued.Token+"x")
	require.NoError(t, err)
	assert.False(t, ok, "hash must match the presented token")

	ok, err = f.registry.IsRegistered(ctx, "someone-else", issued.ID, issued.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryExtendReplacesInPlace(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "pw", domain.RoleMember)

	current, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)
	first := current

	for i := 0; i < 5; i++ {
		next, err := f.registry.Extend(ctx, user, current.ID)
		require.NoError(t, err)
		current = next
	}

	count, err := f.registry.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ok, err := f.registry.IsRegistered(ctx, user.ID, first.ID, first.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.registry.IsRegistered(ctx, user.ID, current.ID, current.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.registry.Extend(ctx, user, first.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryRevokeRemovesOnlyOneEntry(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "pw", domain.RoleMember)

	phone, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)
	laptop, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, f.registry.Revoke(ctx, user.ID, phone.ID))
	require.ErrorIs(t, f.registry.Revoke(ctx, user.ID, phone.ID), ErrSessionNotFound)

	ok, err := f.registry.IsRegistered(ctx, user.ID, laptop.ID, laptop.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.registry.RevokeAll(ctx, user.ID))
	count, err := f.registry.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegistryBoundEvictsOldestSession(t *testing.T) {
	f := newGateFixture(t, 2)
	ctx := context.Background()
	user := f.createUser(t, "alice", "pw", domain.RoleMember)

	oldest, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)
	_, err = f.registry.Issue(ctx, user)
	require.NoError(t, err)
	newest, err := f.registry.Issue(ctx, user)
	require.NoError(t, err)

	count, err := f.registry.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ok, err := f.registry.IsRegistered(ctx, user.ID, oldest.ID, oldest.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.registry.IsRegistered(ctx, user.ID, newest.ID, newest.Token)
	require.NoError(t, err)
	assert.True(t, ok)
}
