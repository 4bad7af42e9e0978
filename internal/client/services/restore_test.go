package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
)

// rawStore is a session store plus a way to write its entries directly.
type rawStore struct {
	name string
	new  func(t *testing.T) (session.Store, metadata.Repository)
}

var rawStores = []rawStore{
	{
		name: "sqlite",
		new: func(t *testing.T) (session.Store, metadata.Repository) {
			db, err := client.InitDatabase(context.Background(), ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return session.NewSQLiteStore(db), metadata.NewSQLiteRepository(db)
		},
	},
	{
		name: "redis",
		new: func(t *testing.T) (session.Store, metadata.Repository) {
			m, err := miniredis.Run()
			require.NoError(t, err)
			t.Cleanup(m.Close)
			rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
			t.Cleanup(func() { _ = rc.Close() })
			return session.NewRedisStore(rc, "test:"), metadata.NewRedisRepository(rc, "test:")
		},
	},
}

func TestRestore_UnusableStoredUserIsDiscarded(t *testing.T) {
	users := map[string]string{
		"bad json":     "{not json",
		"unknown role": `{"id":"u1","name":"Root","email":"root@x.com","role":"superuser","onboarding_complete":true}`,
	}
	for _, rs := range rawStores {
		for name, raw := range users {
			t.Run(rs.name+"/"+name, func(t *testing.T) {
				ctx := context.Background()
				store, repo := rs.new(t)
				require.NoError(t, repo.Set(ctx, session.KeyUser, []byte(raw)))
				require.NoError(t, repo.Set(ctx, session.KeyToken, []byte("T1")))

				log, logs := testLogger()
				auth := NewAuthService(newFakeClient(), store, log)

				require.NoError(t, auth.Restore(ctx))
				assert.Equal(t, StateUnauthenticated, auth.Snapshot().State)
				assert.Empty(t, auth.AccessToken())
				assert.Contains(t, logs.String(), "discarding unusable stored session")

				left, err := store.Load(ctx)
				require.NoError(t, err)
				assert.Nil(t, left)
			})
		}
	}
}
