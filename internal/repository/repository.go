// Package repository handles data persistence.
package repository

import (
	"context"

	"github.com/gotodo/gotodo/internal/models"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create stores a new user. It returns models.ErrDuplicateEmail or
	// models.ErrDuplicateUser when the email or username is taken.
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}

// TagRepository defines the interface for tag persistence operations.
type TagRepository interface {
	// List returns all tags ordered by id.
	List(ctx context.Context) ([]models.Tag, error)

	// Create stores a new tag. It returns models.ErrDuplicateTag when the
	// name is taken.
	Create(ctx context.Context, name string) (*models.Tag, error)

	// Delete removes a tag. Tasks referencing it lose their tag.
	Delete(ctx context.Context, id int64) error

	// Exists checks if a tag id exists.
	Exists(ctx context.Context, id int64) (bool, error)

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}

// TaskRepository defines the interface for task persistence operations.
// Every lookup is scoped to the owning user; a task owned by someone else
// is reported as models.ErrTaskNotFound.
type TaskRepository interface {
	// ListByUser returns the user's tasks ordered by id.
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)

	// Get retrieves one of the user's tasks.
	Get(ctx context.Context, id, userID int64) (*models.Task, error)

	// Create stores a new task for the user.
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)

	// Update replaces the task's fields.
	Update(ctx context.Context, id, userID int64, in models.TaskInput) (*models.Task, error)

	// Delete removes one of the user's tasks.
	Delete(ctx context.Context, id, userID int64) error

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}
