package metadata

import (
	"context"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisRepository, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewRedisRepository(rc, "hv:"), m
}

func TestRedis_SetGetDelete(t *testing.T) {
	r, m := setupRedis(t)
	ctx := context.Background()

	v, err := r.Get(ctx, "preferences")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Set(ctx, "preferences", []byte(`{"dark_mode":true}`)))
	require.True(t, m.Exists("hv:preferences"))

	v, err = r.Get(ctx, "preferences")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"dark_mode":true}`), v)

	require.NoError(t, r.Set(ctx, "other", []byte("x")))
	require.NoError(t, r.Delete(ctx, "preferences", "other", "missing"))
	require.False(t, m.Exists("hv:preferences"))
	require.False(t, m.Exists("hv:other"))

	require.NoError(t, r.Delete(ctx))
}

func TestRedis_Unreachable(t *testing.T) {
	r, m := setupRedis(t)
	m.Close()
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata")
}
