package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/config"
	"github.com/dmitrijs2005/hospivibe/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
	"github.com/dmitrijs2005/hospivibe/internal/testbackend"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// captured collects everything printed through printlnFn.
type captured struct {
	mu    sync.Mutex
	lines []string
}

func (c *captured) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

func (c *captured) reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

func capturePrintln(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		c.mu.Lock()
		c.lines = append(c.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		c.mu.Unlock()
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return c
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

// env is an App talking to an in-process backend with an in-memory
// SQLite session store.
type env struct {
	app     *App
	backend *testbackend.Server
	store   session.Store
	out     *captured
}

func newEnv(t *testing.T) *env {
	t.Helper()

	backend := testbackend.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	api, err := client.NewHTTPClient(srv.URL, logging.Discard())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.APIURL = srv.URL

	e := &env{backend: backend, store: session.NewSQLiteStore(db), out: capturePrintln(t)}
	e.app = newApp(cfg, logging.Discard(), deps{
		api:    api,
		store:  e.store,
		prefs:  metadata.NewSQLiteRepository(db),
		now:    func() time.Time { return fixedNow },
		reader: bufio.NewReader(strings.NewReader("")),
		out:    io.Discard,
	})
	api.SetTokenSource(e.app.auth)
	return e
}

// feed replaces the App's input with lines.
func (e *env) feed(lines ...string) {
	e.app.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// run dispatches a command the way the shell does.
func (e *env) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	known, err := e.app.dispatch(context.Background(), name, args)
	require.True(t, known, "command %q not registered", name)
	return err
}
