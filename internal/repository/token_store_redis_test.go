package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTokenStoreGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(client)
	ctx := context.Background()

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectHGet("storefront:tokens:u1", "t1").SetVal(
		`{"hash":"abc","issued_at":"2024-05-01T12:00:00Z","expires_at":"2024-05-08T12:00:00Z","created_at":"2024-05-01T12:00:00Z"}`,
	)

	token, err := store.Get(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", token.UserID)
	assert.Equal(t, "t1", token.TokenID)
	assert.Equal(t, "abc", token.TokenHash)
	assert.True(t, token.IssuedAt.Equal(issued))
	assert.True(t, token.ExpiresAt.Equal(issued.Add(7*24*time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenStoreGetMissing(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(client)

	mock.ExpectHGet("storefront:tokens:u1", "gone").RedisNil()

	_, err := store.Get(context.Background(), "u1", "gone")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenStoreRemove(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(client)
	ctx := context.Background()

	mock.ExpectHDel("storefront:tokens:u1", "t1").SetVal(1)
	mock.ExpectHDel("storefront:tokens:u1", "t1").SetVal(0)

	require.NoError(t, store.Remove(ctx, "u1", "t1"))
	require.ErrorIs(t, store.Remove(ctx, "u1", "t1"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTokenStoreRemoveAllAndCount(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisTokenStore(client)
	ctx := context.Background()

	mock.ExpectHLen("storefront:tokens:u1").SetVal(3)
	mock.ExpectDel("storefront:tokens:u1").SetVal(1)

	count, err := store.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, store.RemoveAll(ctx, "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOldestBeyondEvictsOldestFirst(t *testing.T) {
	existing := map[string]string{
		"old":    `{"hash":"h1","created_at":"2024-01-01T00:00:00Z"}`,
		"middle": `{"hash":"h2","created_at":"2024-02-01T00:00:00Z"}`,
		"recent": `{"hash":"h3","created_at":"2024-03-01T00:00:00Z"}`,
	}

	assert.Equal(t, []string{"old", "middle"}, oldestBeyond("u1", copyEntries(existing), "new", 2))
	assert.Nil(t, oldestBeyond("u1", copyEntries(existing), "new", 4))
	assert.Nil(t, oldestBeyond("u1", copyEntries(existing), "new", 0))
}

func TestOldestBeyondIgnoresIncomingID(t *testing.T) {
	existing := map[string]string{
		"a": `{"hash":"h1","created_at":"2024-01-01T00:00:00Z"}`,
		"b": `{"hash":"h2","created_at":"2024-02-01T00:00:00Z"}`,
	}

	assert.Nil(t, oldestBeyond("u1", existing, "b", 2))
}

func copyEntries(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
