package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/gotodo/gotodo/internal/apiclient"
	"github.com/gotodo/gotodo/internal/cache"
	"github.com/gotodo/gotodo/internal/config"
	"github.com/gotodo/gotodo/internal/session"
	"github.com/gotodo/gotodo/internal/storage"
	"github.com/gotodo/gotodo/pkg/logger"
)

const envKey = "env"

// env is what a command needs: configuration, the session and a client.
type env struct {
	cfg     *config.ClientConfig
	log     *logger.Logger
	store   *session.Store
	client  *apiclient.Client
	closers []func() error
}

// setup builds the env once per invocation and caches it on the app.
func setup(c *cli.Context) (*env, error) {
	if e, ok := c.App.Metadata[envKey].(*env); ok {
		return e, nil
	}

	cfg, err := config.LoadClient(c.String("config"), overrides(c))
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg: cfg,
		log: logger.New(c.App.ErrWriter, cfg.Log.Level),
	}

	st, err := e.openStorage()
	if err != nil {
		return nil, err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	e.store = session.NewStore(ctx, st, session.WithKey(cfg.Session.Key), session.WithLogger(e.log))

	e.client, err = apiclient.New(cfg.API.URL,
		apiclient.WithSession(e.store),
		apiclient.WithLogger(e.log),
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithUserAgent(fmt.Sprintf("todo/%s", Version)),
	)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	c.App.Metadata[envKey] = e
	return e, nil
}

func (e *env) openStorage() (storage.Storage, error) {
	switch e.cfg.Session.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStorage(), nil
	case config.BackendFile:
		return storage.NewFileStorage(e.cfg.Session.File, storage.WithFileLogger(e.log)), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     e.cfg.Session.Redis.Addr,
			Password: e.cfg.Session.Redis.Password,
			DB:       e.cfg.Session.Redis.DB,
		})
		rc := cache.NewRedisCacheFromClient(client)
		e.closers = append(e.closers, rc.Close)
		return storage.NewRedisStorage(rc, e.cfg.Session.Redis.Prefix, e.cfg.Session.Redis.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", e.cfg.Session.Backend)
	}
}

// Close releases the session backend.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// requireLogin fails early when no token is held.
func (e *env) requireLogin() error {
	if !e.store.IsLoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run 'todo signin' first")
