package session

import (
	"bitwise74/drive-api/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every session as a hash with a TTL. A set per user tracks
// the session ids so all of them can be revoked at once.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisClient connects to redis and pings it
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return rdb, nil
}

func sessionKey(id string) string   { return "session:" + id }
func userKey(userID string) string { return "user_sessions:" + userID }

func (r *RedisStore) Create(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, sessionKey(s.ID),
			"user_id", s.UserID,
			"expires_at", s.ExpiresAt.Unix(),
			"created_at", s.CreatedAt.Unix(),
		)
		p.Expire(ctx, sessionKey(s.ID), ttl)
		p.SAdd(ctx, userKey(s.UserID), s.ID)
		return nil
	})

	return err
}

func (r *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var data struct {
		UserID    string `redis:"user_id"`
		ExpiresAt int64  `redis:"expires_at"`
		CreatedAt int64  `redis:"created_at"`
	}

	res := r.rdb.HGetAll(ctx, sessionKey(id))
	if err := res.Err(); err != nil {
		return nil, err
	}

	if len(res.Val()) == 0 {
		return nil, ErrNotFound
	}

	if err := res.Scan(&data); err != nil {
		return nil, fmt.Errorf("failed to decode session, %w", err)
	}

	s := &model.Session{
		ID:        id,
		UserID:    data.UserID,
		ExpiresAt: time.Unix(data.ExpiresAt, 0),
		CreatedAt: time.Unix(data.CreatedAt, 0),
	}

	if !s.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}

	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	userID, err := r.rdb.HGet(ctx, sessionKey(id), "user_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKey(id))
		p.SRem(ctx, userKey(userID), id)
		return nil
	})

	return err
}

func (r *RedisStore) DeleteUser(ctx context.Context, userID string) error {
	ids, err := r.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))

	return r.rdb.Del(ctx, keys...).Err()
}
