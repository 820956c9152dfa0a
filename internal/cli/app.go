// Package cli defines the todo command-line client.
//
// Global flags are merged over the client configuration file and GOTODO_*
// environment variables; the signed-in session is kept in the configured
// storage backend between invocations.
package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "todo",
		Usage:   "Manage your gotodo tasks from the terminal",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SignInCommand(),
			LogoutCommand(),
			StatusCommand(),
			RegisterCommand(),
			WhoAmICommand(),
			TaskCommand(),
			TagCommand(),
		},
		Metadata: map[string]any{},
		After: func(c *cli.Context) error {
			if e, ok := c.App.Metadata[envKey].(*env); ok {
				return e.Close()
			}
			return nil
		},
	}
}

// globalFlags returns the global CLI flags. None has a default value so
// only flags given explicitly override the configuration file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"u"},
			Usage:   "API base URL (default http://localhost:8080)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.gotodo/config.yaml)",
		},
		&cli.StringFlag{
			Name:  "session-backend",
			Usage: "Where the session is kept: memory, file, redis",
		},
		&cli.StringFlag{
			Name:  "session-file",
			Usage: "Session file for the file backend",
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis address for the redis backend",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
		},
	}
}

// flagKeys maps global flags to client configuration keys.
var flagKeys = map[string]string{
	"api-url":         "api.url",
	"session-backend": "session.backend",
	"session-file":    "session.file",
	"redis-addr":      "session.redis.addr",
	"log-level":       "log.level",
	"output":          "output",
}

// overrides collects the explicitly set global flags.
func overrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	return out
}
