package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gotodo/gotodo/internal/models"
)

// ErrNoToken is returned by SignIn when the server answers without a token.
var ErrNoToken = errors.New("apiclient: response carried no token")

// SignIn exchanges credentials for tokens and stores the access token in
// the session.
func (c *Client) SignIn(ctx context.Context, creds models.Credentials) (*models.AuthTokens, error) {
	var tokens models.AuthTokens
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/sign-in", creds, &tokens, nil); err != nil {
		return nil, err
	}
	if err := c.storeToken(ctx, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout clears the local session. Tokens are stateless, so the server is
// not contacted.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// Refresh exchanges a refresh token for new tokens and stores the new
// access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+refreshToken)

	var tokens models.AuthTokens
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, &tokens, header); err != nil {
		return nil, err
	}
	if err := c.storeToken(ctx, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (c *Client) storeToken(ctx context.Context, tokens *models.AuthTokens) error {
	token := tokens.AccessToken
	if token == "" {
		token = tokens.Token
	}
	if token == "" {
		return ErrNoToken
	}
	if err := c.session.SignIn(ctx, token); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/users", in, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserTasks returns the signed-in user's tasks.
func (c *Client) ListUserTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks/user", nil, &tasks, nil); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task for the signed-in user.
func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", in, &task, nil); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces one of the signed-in user's tasks.
func (c *Client) UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", id), in, &task, nil); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes one of the signed-in user's tasks.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", id), nil, nil, nil)
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/tags", nil, &tags, nil); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := c.do(ctx, http.MethodPost, "/api/v1/tags", models.TagCreate{Name: name}, &tag, nil); err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag deletes a tag.
func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tags/%d", id), nil, nil, nil)
}
