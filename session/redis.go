package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rotateScript = `
local old_key = KEYS[1]
local new_key = KEYS[2]
local user_key = KEYS[3]
if redis.call("EXISTS", old_key) == 0 then
  return 0
end
redis.call("DEL", old_key)
redis.call("SREM", user_key, ARGV[1])
redis.call("SET", new_key, ARGV[3])
redis.call("SADD", user_key, ARGV[2])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// RedisStore keeps session rows in Redis: one key per (user, token) pair
// plus a per-user set for bulk revocation. Rotation runs as a Lua script so
// the revoke/create pair is atomic and a racing request observes a miss.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] under the given key namespace.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(userID, token string) string {
	return s.prefix + ":s:" + userID + ":" + token
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Create inserts a new session row for userID holding token.
func (s *RedisStore) Create(ctx context.Context, userID, token string) (*Session, error) {
	key := s.key(userID, token)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, time.Now().Unix(), 0)
		pipe.SAdd(ctx, s.userKey(userID), token)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Session{ID: key, UserID: userID, Token: token}, nil
}

// Find returns the session matching (userID, token) exactly, or
// [ErrNotFound].
func (s *RedisStore) Find(ctx context.Context, userID, token string) (*Session, error) {
	key := s.key(userID, token)

	if err := s.redis.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Session{ID: key, UserID: userID, Token: token}, nil
}

// Rotate atomically replaces (userID, oldToken) with a session holding
// newToken. The loser of a concurrent rotation gets [ErrNotFound].
func (s *RedisStore) Rotate(ctx context.Context, userID, oldToken, newToken string) (*Session, error) {
	res, err := rotateLua.Run(ctx, s.redis,
		[]string{s.key(userID, oldToken), s.key(userID, newToken), s.userKey(userID)},
		oldToken, newToken, time.Now().Unix(),
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res == 0 {
		return nil, ErrNotFound
	}

	return &Session{ID: s.key(userID, newToken), UserID: userID, Token: newToken}, nil
}

// Revoke deletes the session row. Deleting an already-deleted row is a
// no-op.
func (s *RedisStore) Revoke(ctx context.Context, sess *Session) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(sess.UserID, sess.Token))
		pipe.SRem(ctx, s.userKey(sess.UserID), sess.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokeAllForUser removes every session of userID. Not fully atomic: a
// session created between the set read and the deletes survives the call.
func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID string) error {
	tokens, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.key(userID, token))
	}
	keys = append(keys, s.userKey(userID))

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
