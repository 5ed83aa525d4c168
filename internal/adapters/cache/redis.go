package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tymchak1/flow-roles/internal/domain"
	"github.com/tymchak1/flow-roles/internal/ports"
)

func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisIdempotencyStore implements the reserve/complete protocol on Redis.
// The reservation is written with SETNX so two racing calls with the same
// key resolve to one winner; the record's own TTL handles expiry.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

type idempotencyBlob struct {
	RequestHash  string `json:"request_hash"`
	ResponseCode int    `json:"response_code"`
	ResponseBody []byte `json:"response_body,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string, _ time.Time) (*ports.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, "vault:idem:"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var blob idempotencyBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:          key,
		RequestHash:  blob.RequestHash,
		ResponseCode: blob.ResponseCode,
		ResponseBody: blob.ResponseBody,
		ExpiresAt:    time.Unix(blob.ExpiresAt, 0).UTC(),
	}, nil
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	blob := idempotencyBlob{RequestHash: requestHash, ExpiresAt: expiresAt.Unix()}
	raw, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Hour
	}
	ok, err := s.client.SetNX(ctx, "vault:idem:"+key, raw, ttl).Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	existing, err := s.Get(ctx, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if existing != nil && existing.RequestHash != requestHash {
		return domain.ErrConflict
	}
	return nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	redisKey := "vault:idem:" + key
	existing, err := s.Get(ctx, key, time.Now().UTC())
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	blob := idempotencyBlob{
		RequestHash:  existing.RequestHash,
		ResponseCode: responseCode,
		ResponseBody: responseBody,
		ExpiresAt:    existing.ExpiresAt.Unix(),
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey, raw, redis.KeepTTL).Err()
}
