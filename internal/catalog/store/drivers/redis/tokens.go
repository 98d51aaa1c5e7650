// Package redis provides a Tokens registry backend on Redis for deployments
// that want revocation state shared across replicas. Records carry a native
// TTL so the backend needs no housekeeping sweep.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"

	"github.com/go-redis/redis/v8"
)

const (
	accessKeyPrefix  = "registry:access:"
	subjectKeyPrefix = "registry:subject:"
)

// upsertScript atomically replaces the subject's record: drops the previous
// access-hash key, then writes the subject pointer and the new record. Running
// as a script keeps concurrent logins for one subject from interleaving.
//
// Both scripts build some key names inside Lua (the previous access-hash key
// here, the subject pointer in deleteScript) rather than declaring them in
// KEYS, because those names are only known after a GET. That is fine on a
// single node but fails Redis Cluster key-ownership checks; running against a
// cluster would need hash tags to pin a subject's keys to one slot.
var upsertScript = redis.NewScript(`
local old = redis.call("GET", KEYS[1])
if old and old ~= ARGV[2] then
	redis.call("DEL", ARGV[4] .. old)
end
redis.call("SET", KEYS[1], ARGV[2], "EX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[1], "EX", ARGV[3])
return 1
`)

// deleteScript removes both the record and the subject pointer, reporting
// whether anything existed.
var deleteScript = redis.NewScript(`
local payload = redis.call("GET", KEYS[1])
if not payload then
	return 0
end
local rec = cjson.decode(payload)
redis.call("DEL", KEYS[1])
redis.call("DEL", ARGV[1] .. rec.subject)
return 1
`)

type record struct {
	Subject     string    `json:"subject"`
	RefreshHash string    `json:"refresh_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TokensStore implements store.Tokens on Redis.
type TokensStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewTokensStore builds a registry whose records expire after ttl; pass the
// refresh token lifetime so registry entries outlive every token they pair.
func NewTokensStore(client redis.UniversalClient, ttl time.Duration) *TokensStore {
	return &TokensStore{client: client, ttl: ttl}
}

func (s *TokensStore) Upsert(ctx context.Context, rec domain.TokenRecord) error {
	now := time.Now().UTC()
	payload, err := json.Marshal(record{
		Subject:     rec.Subject,
		RefreshHash: rec.RefreshHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("redis registry: marshal record: %w", err)
	}

	keys := []string{subjectKeyPrefix + rec.Subject, accessKeyPrefix + rec.AccessHash}
	args := []any{string(payload), rec.AccessHash, int(s.ttl.Seconds()), accessKeyPrefix}

	if err := upsertScript.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("redis registry: upsert: %w", err)
	}
	return nil
}

func (s *TokensStore) GetByAccessHash(ctx context.Context, accessHash string) (domain.TokenRecord, error) {
	data, err := s.client.Get(ctx, accessKeyPrefix+accessHash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TokenRecord{}, store.ErrNotFound
		}
		return domain.TokenRecord{}, fmt.Errorf("redis registry: get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("redis registry: unmarshal record: %w", err)
	}

	return domain.TokenRecord{
		Subject:     rec.Subject,
		AccessHash:  accessHash,
		RefreshHash: rec.RefreshHash,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func (s *TokensStore) DeleteByAccessHash(ctx context.Context, accessHash string) error {
	n, err := deleteScript.Run(ctx, s.client, []string{accessKeyPrefix + accessHash}, subjectKeyPrefix).Int()
	if err != nil {
		return fmt.Errorf("redis registry: delete: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBefore is a no-op: records expire via native TTL.
func (s *TokensStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
