package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/pkg/logger"
)

// SignInCommand signs in and keeps the token in the session backend.
func SignInCommand() *cli.Command {
	return &cli.Command{
		Name:    "signin",
		Aliases: []string{"login"},
		Usage:   "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Account password",
				EnvVars:  []string{"GOTODO_PASSWORD"},
				Required: true,
			},
		},
		Action: signIn,
	}
}

func signIn(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	email := c.String("email")
	if _, err := e.client.SignIn(c.Context, models.Credentials{Email: email, Password: c.String("password")}); err != nil {
		return err
	}
	return message(c, e, "Signed in as %s", email)
}

// LogoutCommand clears the local session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			if err := e.client.Logout(c.Context); err != nil {
				return err
			}
			return message(c, e, "Logged out")
		},
	}
}

// StatusCommand prints whether a session is held. The token is masked.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the login state",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			snap := e.store.Snapshot()
			status := struct {
				LoggedIn bool   `json:"logged_in"`
				Token    string `json:"token,omitempty"`
				Backend  string `json:"backend"`
				APIURL   string `json:"api_url"`
			}{
				LoggedIn: snap.IsLoggedIn(),
				Token:    logger.MaskToken(snap.Token()),
				Backend:  e.cfg.Session.Backend,
				APIURL:   e.client.BaseURL(),
			}
			return render(c, e, status, func() *table {
				state := "logged out"
				if status.LoggedIn {
					state = "logged in"
				}
				t := &table{Rows: [][]string{
					{"Status:", state},
					{"API:", status.APIURL},
					{"Session:", status.Backend},
				}}
				if status.Token != "" {
					t.Rows = append(t.Rows, []string{"Token:", status.Token})
				}
				return t
			})
		},
	}
}

// RegisterCommand creates an account.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"n"}, Usage: "Username (3-50 characters)", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Password (8-128 characters)",
				EnvVars:  []string{"GOTODO_PASSWORD"},
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			user, err := e.client.Register(c.Context, models.UserCreate{
				Username: c.String("username"),
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}
			return render(c, e, user, func() *table { return userTable(user) })
		},
	}
}

// WhoAmICommand prints the signed-in user.
func WhoAmICommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			user, err := e.client.Me(c.Context)
			if err != nil {
				return err
			}
			return render(c, e, user, func() *table { return userTable(user) })
		},
	}
}
