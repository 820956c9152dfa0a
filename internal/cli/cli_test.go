package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/gotodo/gotodo/internal/config"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/server"
	"github.com/gotodo/gotodo/pkg/logger"
)

func startAPI(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{
		App:    config.AppConfig{Env: "test"},
		Server: config.ServerConfig{Host: "127.0.0.1"},
		Auth:   config.AuthConfig{JWTSecret: "cli-secret", AccessTTL: time.Hour, RefreshTTL: time.Hour, BcryptCost: 4},
		Rate:   config.RateLimitConfig{SignInRequests: 50, SignInWindow: time.Minute},
	}
	srv, err := server.New(cfg, logger.New(io.Discard, "error"), server.MemoryDependencies())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts.URL
}

// harness runs the app with a config file pointing at the test API.
type harness struct {
	t      *testing.T
	config string
	extra  []string
}

func newHarness(t *testing.T, extra ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "api:\n  url: " + startAPI(t) + "\n" +
		"session:\n  backend: file\n  file: " + filepath.Join(dir, "session.json") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return &harness{t: t, config: cfgPath, extra: extra}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{"todo", "--config", h.config}, h.extra...)
	full = append(full, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "todo %v", args)
	return out
}

func (h *harness) signUp() {
	h.mustRun("register", "--username", "alice", "--email", "alice@example.com", "--password", "password123")
	h.mustRun("signin", "--email", "alice@example.com", "--password", "password123")
}

func TestApp(t *testing.T) {
	app := App()
	assert.Equal(t, "todo", app.Name)

	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"signin", "logout", "status", "register", "whoami", "task", "tag"} {
		assert.True(t, names[name], "missing command %s", name)
	}

	flags := map[string]bool{}
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"api-url", "config", "session-backend", "session-file", "redis-addr", "log-level", "output"} {
		assert.True(t, flags[name], "missing flag %s", name)
	}
}

func TestSessionSurvivesInvocations(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("status")
	assert.Contains(t, out, "logged out")

	h.signUp()

	out = h.mustRun("status")
	assert.Contains(t, out, "logged in")
	assert.Contains(t, out, "...")

	out = h.mustRun("whoami")
	assert.Contains(t, out, "alice@example.com")

	assert.Contains(t, h.mustRun("logout"), "Logged out")
	assert.Contains(t, h.mustRun("status"), "logged out")

	_, err := h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestStatusNeverPrintsToken(t *testing.T) {
	h := newHarness(t, "--output", "json")
	h.signUp()

	out := h.mustRun("status")
	var status struct {
		LoggedIn bool   `json:"logged_in"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.LoggedIn)
	assert.Regexp(t, `^.{3}\.\.\..{3}$`, status.Token)
}

func TestTaskCommands(t *testing.T) {
	h := newHarness(t)
	h.signUp()

	out := h.mustRun("tag", "create", "work")
	assert.Contains(t, out, "work")

	out = h.mustRun("--output", "json", "task", "create", "--title", "write docs", "--tag", "1")
	var task models.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, "write docs", task.Title)
	assert.Equal(t, models.StatusPending, task.Status)
	require.NotNil(t, task.TagID)

	out = h.mustRun("--output", "json", "task", "update", "--status", "in_progress", "1")
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, "write docs", task.Title)
	require.NotNil(t, task.TagID, "fields not given are kept")

	out = h.mustRun("--output", "json", "task", "update", "--no-tag", "1")
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Nil(t, task.TagID)

	out = h.mustRun("task", "list")
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "write docs")
	assert.Contains(t, out, "IN_PROGRESS")

	assert.Contains(t, h.mustRun("task", "delete", "1"), "Deleted task 1")

	_, err := h.run("task", "delete", "1")
	assert.Error(t, err)

	_, err = h.run("task", "update", "--title", "x", "42")
	assert.ErrorContains(t, err, "task 42 not found")

	_, err = h.run("task", "create", "--title", "x", "--status", "DONE")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = h.run("task", "delete", "abc")
	assert.ErrorContains(t, err, "invalid TASK_ID")
}

func TestTagCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun("tag", "create", "home")
	_, err := h.run("tag", "create", "home")
	assert.Error(t, err)

	out := h.mustRun("--output", "json", "tag", "list")
	var tags []models.Tag
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	require.Len(t, tags, 1)
	assert.Equal(t, "home", tags[0].Name)

	assert.Contains(t, h.mustRun("tag", "delete", "1"), "Deleted tag 1")
	_, err = h.run("tag", "delete")
	assert.ErrorContains(t, err, "TAG_ID is required")
}

func TestTaskCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("task", "list")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestRedisSessionBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	h := newHarness(t, "--session-backend", "redis", "--redis-addr", mr.Addr())
	h.signUp()

	assert.True(t, mr.Exists("gotodo:session:auth-storage"))
	assert.Contains(t, h.mustRun("status"), "logged in")

	h.mustRun("logout")
	assert.False(t, mr.Exists("gotodo:session:auth-storage"))
}

func TestMemorySessionBackendForgets(t *testing.T) {
	h := newHarness(t, "--session-backend", "memory")
	h.signUp()

	assert.Contains(t, h.mustRun("status"), "logged out")
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("--session-backend", "floppy", "status")
	assert.Error(t, err)

	_, err = h.run("--api-url", "javascript:alert(1)", "status")
	assert.Error(t, err)

	app := App()
	app.Writer, app.ErrWriter = io.Discard, io.Discard
	err = app.Run([]string{"todo", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "status"})
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	app := App()
	var got map[string]any
	app.Action = func(c *cli.Context) error {
		got = overrides(c)
		return nil
	}
	require.NoError(t, app.Run([]string{"todo", "--api-url", "http://x:1", "--output", "json"}))
	assert.Equal(t, map[string]any{"api.url": "http://x:1", "output": "json"}, got)
}
