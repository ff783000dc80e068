package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// RedisStore keeps sessions in Redis.
//
// Keys:
//
//	{prefix}data:{id}     JSON record, expires with the session
//	{prefix}token:{token} session id, expires with the session
//	{prefix}user:{userID} set of session ids owned by the user
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a Redis backed session store.
// An empty prefix defaults to "session:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

type redisRecord struct {
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Values    map[string]string `json:"values"`
	ID        string            `json:"id"`
	Token     string            `json:"token"`
	UserID    string            `json:"user_id,omitempty"`
}

func (s *RedisStore) dataKey(id string) string     { return s.prefix + "data:" + id }
func (s *RedisStore) tokenKey(token string) string { return s.prefix + "token:" + token }
func (s *RedisStore) userKey(userID string) string { return s.prefix + "user:" + userID }

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess, "")
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	id, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get token: %w", err)
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// The token index may outlive a rotation for a moment; trust the record.
	if rec.Token != token {
		return nil, ErrNotFound
	}

	sess := &Session{
		ID:        rec.ID,
		Token:     rec.Token,
		UserID:    rec.UserID,
		Values:    rec.Values,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	if sess.Values == nil {
		sess.Values = make(map[string]string)
	}
	if sess.IsExpired(s.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	prev, err := s.load(ctx, sess.ID)
	if err != nil {
		return err
	}
	return s.write(ctx, sess, prev.Token)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	rec, err := s.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.dataKey(id), s.tokenKey(rec.Token))
		if rec.UserID != "" {
			p.SRem(ctx, s.userKey(rec.UserID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: list user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, s.userKey(userID)).Err()
}

// DeleteExpired is a no-op: Redis expires session keys on its own.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *RedisStore) load(ctx context.Context, id string) (*redisRecord, error) {
	raw, err := s.client.Get(ctx, s.dataKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Join(ErrCorrupted, err)
	}
	return &rec, nil
}

func (s *RedisStore) write(ctx context.Context, sess *Session, oldToken string) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrExpired
	}

	raw, err := json.Marshal(redisRecord{
		ID:        sess.ID,
		Token:     sess.Token,
		UserID:    sess.UserID,
		Values:    sess.Values,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.dataKey(sess.ID), raw, ttl)
		p.Set(ctx, s.tokenKey(sess.Token), sess.ID, ttl)
		if oldToken != "" && oldToken != sess.Token {
			p.Del(ctx, s.tokenKey(oldToken))
		}
		if sess.UserID != "" {
			p.SAdd(ctx, s.userKey(sess.UserID), sess.ID)
			p.Expire(ctx, s.userKey(sess.UserID), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}
