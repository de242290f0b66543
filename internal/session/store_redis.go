package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sikaloan/internal/domain"
	"sikaloan/pkg/platform/sentinel"
)

const sessionKeyPrefix = "ussd:session:"

// RedisStore keeps sessions in Redis under a per-MSISDN key with a TTL, so
// abandoned conversations expire on their own and every service instance
// sees the same state. Single-key SET/GET/DEL are atomic in Redis, which
// gives the per-subscriber serialization Store requires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed session store. ttl bounds how long an
// abandoned conversation survives.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(msisdn string) string {
	return sessionKeyPrefix + msisdn
}

func (s *RedisStore) LoadOrCreate(ctx context.Context, msisdn string) (*domain.Session, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(msisdn)).Bytes()
	if errors.Is(err, redis.Nil) {
		sess := domain.NewSession(msisdn)
		if err := s.Advance(ctx, sess); err != nil {
			return nil, false, err
		}
		return sess, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load session: %w", sentinel.ErrUnavailable, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// Corrupt state is unrecoverable for this conversation; start over.
		sess = *domain.NewSession(msisdn)
		if err := s.Advance(ctx, &sess); err != nil {
			return nil, false, err
		}
		return &sess, true, nil
	}
	return &sess, false, nil
}

func (s *RedisStore) Advance(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.MSISDN), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: save session: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) End(ctx context.Context, msisdn string) error {
	if err := s.client.Del(ctx, sessionKey(msisdn)).Err(); err != nil {
		return fmt.Errorf("%w: delete session: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
