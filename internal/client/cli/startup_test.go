package cli

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
)

func storeSession(t *testing.T, e *env, u models.User, onboarded bool, token string) {
	t.Helper()
	u.OnboardingComplete = onboarded
	require.NoError(t, e.store.Save(context.Background(), &models.Session{User: &u, Token: token}))
}

func TestStart_AdoptsOnboardingFinishedElsewhere(t *testing.T) {
	e := newEnv(t)
	u := e.backend.SeedUser("Nina", "nurse@x.com", "secret", models.RoleNurse, true)
	storeSession(t, e, u, false, e.backend.TokenFor(u.ID))

	require.NoError(t, e.app.start(context.Background()))

	assert.Equal(t, services.StateReady, e.app.auth.Snapshot().State)
	assert.Equal(t, routes.Dashboard, e.app.currentRoute())
	assert.Equal(t, 1, e.backend.Calls(http.MethodGet, "/api/user/profile"))

	stored, err := e.store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.User.OnboardingComplete)

	require.NoError(t, e.run(t, "onboard"))
	assert.Contains(t, e.out.text(), "Onboarding is already complete.")
	assert.Zero(t, e.backend.Calls(http.MethodPost, "/api/user/onboarding"))
}

func TestStart_BackendErrorKeepsStoredSession(t *testing.T) {
	e := newEnv(t)
	u := e.backend.SeedUser("Nina", "nurse@x.com", "secret", models.RoleNurse, true)
	storeSession(t, e, u, false, e.backend.TokenFor(u.ID))
	e.backend.FailNext(http.MethodGet, "/api/user/profile", http.StatusInternalServerError, "Database unavailable")

	require.NoError(t, e.app.start(context.Background()))

	assert.Equal(t, services.StateNeedsOnboarding, e.app.auth.Snapshot().State)
	assert.NotEmpty(t, e.app.auth.AccessToken())
}

func TestStart_RejectedTokenSignsOut(t *testing.T) {
	e := newEnv(t)
	u := e.backend.SeedUser("Nina", "nurse@x.com", "secret", models.RoleNurse, true)
	storeSession(t, e, u, true, "garbage")

	require.NoError(t, e.app.start(context.Background()))

	assert.Equal(t, services.StateUnauthenticated, e.app.auth.Snapshot().State)
	stored, err := e.store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestStart_SignedOutMakesNoRequest(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.app.start(context.Background()))
	assert.Zero(t, e.backend.Calls(http.MethodGet, "/api/user/profile"))
}

func TestCommands_RunWithCorruptStoredSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hospivibe.db")

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	repo := metadata.NewSQLiteRepository(db)
	require.NoError(t, repo.Set(ctx, session.KeyUser, []byte("{not json")))
	require.NoError(t, repo.Set(ctx, session.KeyToken, []byte("T1")))
	require.NoError(t, db.Close())

	out := capturePrintln(t)
	args := []string{"--db-path", path, "--env-file=", "--log-level", "error"}

	root := NewRootCommand()
	root.SetArgs(append([]string{"logout"}, args...))
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, out.text(), "Signed out.")

	root = NewRootCommand()
	root.SetArgs(append([]string{"status"}, args...))
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, out.text(), "State: unauthenticated")

	db, err = client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	left, err := session.NewSQLiteStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, left)
}
