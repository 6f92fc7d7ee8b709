package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKey = "daraja:access_token"

// TokenStore keeps the gateway's OAuth token in redis for slightly less than
// the provider-side expiry, so concurrent payment attempts don't each pay the
// token-exchange round trip.
type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTokenStore(rdb *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, ttl: ttl}
}

// Get returns ("", nil) when no token is cached.
func (s *TokenStore) Get(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *TokenStore) Put(ctx context.Context, token string) error {
	return s.rdb.Set(ctx, tokenKey, token, s.ttl).Err()
}
