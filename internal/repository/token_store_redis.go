package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
)

const (
	redisTokenKeyPrefix = "storefront:tokens:"
	redisTxRetries      = 5
)

type redisTokenEntry struct {
	TokenHash string    `json:"hash"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisTokenStore keeps each user's token set in one hash keyed by token id.
type RedisTokenStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisTokenStore wraps a go-redis client.
func NewRedisTokenStore(client redis.UniversalClient) *RedisTokenStore {
	return &RedisTokenStore{client: client, now: time.Now}
}

func redisTokenKey(userID string) string {
	return redisTokenKeyPrefix + userID
}

func (s *RedisTokenStore) encode(token *domain.SessionToken) (string, error) {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = s.now().UTC()
	}
	raw, err := json.Marshal(redisTokenEntry{
		TokenHash: token.TokenHash,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	return string(raw), err
}

func decodeRedisToken(userID, tokenID, raw string) (*domain.SessionToken, error) {
	var entry redisTokenEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	return &domain.SessionToken{
		UserID:    userID,
		TokenID:   tokenID,
		TokenHash: entry.TokenHash,
		IssuedAt:  entry.IssuedAt,
		ExpiresAt: entry.ExpiresAt,
		CreatedAt: entry.CreatedAt,
	}, nil
}

// watch retries fn while a concurrent writer invalidates the WATCH.
func (s *RedisTokenStore) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	for i := 0; i < redisTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

func (s *RedisTokenStore) Add(ctx context.Context, token *domain.SessionToken, limit int) error {
	key := redisTokenKey(token.UserID)
	value, err := s.encode(token)
	if err != nil {
		return err
	}
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		existing, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		evict := oldestBeyond(token.UserID, existing, token.TokenID, limit)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, token.TokenID, value)
			if len(evict) > 0 {
				pipe.HDel(ctx, key, evict...)
			}
			return nil
		})
		return err
	})
}

// oldestBeyond picks the ids to drop so that, with the incoming token added,
// at most limit entries remain.
func oldestBeyond(userID string, existing map[string]string, incomingID string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	delete(existing, incomingID)
	excess := len(existing) + 1 - limit
	if excess <= 0 {
		return nil
	}
	entries := make([]*domain.SessionToken, 0, len(existing))
	for id, raw := range existing {
		entry, err := decodeRedisToken(userID, id, raw)
		if err != nil {
			// Unreadable entries are evicted first.
			entry = &domain.SessionToken{TokenID: id}
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].TokenID < entries[j].TokenID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	ids := make([]string, 0, excess)
	for _, entry := range entries[:excess] {
		ids = append(ids, entry.TokenID)
	}
	return ids
}

func (s *RedisTokenStore) Replace(ctx context.Context, oldTokenID string, token *domain.SessionToken) error {
	key := redisTokenKey(token.UserID)
	token.CreatedAt = time.Time{}
	value, err := s.encode(token)
	if err != nil {
		return err
	}
	return s.watch(ctx, key, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, key, oldTokenID).Result()
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, key, oldTokenID)
			pipe.HSet(ctx, key, token.TokenID, value)
			return nil
		})
		return err
	})
}

func (s *RedisTokenStore) Get(ctx context.Context, userID, tokenID string) (*domain.SessionToken, error) {
	raw, err := s.client.HGet(ctx, redisTokenKey(userID), tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRedisToken(userID, tokenID, raw)
}

func (s *RedisTokenStore) Remove(ctx context.Context, userID, tokenID string) error {
	removed, err := s.client.HDel(ctx, redisTokenKey(userID), tokenID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisTokenStore) RemoveAll(ctx context.Context, userID string) error {
	return s.client.Del(ctx, redisTokenKey(userID)).Err()
}

func (s *RedisTokenStore) Count(ctx context.Context, userID string) (int, error) {
	n, err := s.client.HLen(ctx, redisTokenKey(userID)).Result()
	return int(n), err
}
