package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// RedisStore keeps the session in Redis under "<prefix>user" and
// "<prefix>token", for terminals that share one session across machines.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store. An empty prefix defaults to
// "hospivibe:session:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hospivibe:session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	user, err := encodeUser(sess)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(KeyUser), user, 0)
		p.Set(ctx, r.key(KeyToken), sess.Token, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (*models.Session, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyUser), r.key(KeyToken)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	raw := make([][]byte, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			raw[i] = []byte(s)
		}
	}
	return assemble(raw[0], raw[1])
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(KeyUser), r.key(KeyToken)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
