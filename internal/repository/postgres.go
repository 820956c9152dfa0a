package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gotodo/gotodo/internal/database"
	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
)

// PostgresUserRepository implements UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	pool *database.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL-backed user repository.
func NewPostgresUserRepository(pool *database.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create stores a new user.
func (r *PostgresUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	defer observe("users.create", time.Now())

	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, created_at
	`

	var u models.User
	err := r.pool.QueryRow(ctx, query, username, email, passwordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok {
			if constraint == "users_email_key" {
				return nil, models.ErrDuplicateEmail
			}
			return nil, models.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by id.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a user by email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresUserRepository) getBy(ctx context.Context, column string, value any) (*models.User, error) {
	defer observe("users.get", time.Now())

	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE ` + column + ` = $1`

	var u models.User
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresUserRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

// PostgresTagRepository implements TagRepository using PostgreSQL.
type PostgresTagRepository struct {
	pool *database.Pool
}

// NewPostgresTagRepository creates a new PostgreSQL-backed tag repository.
func NewPostgresTagRepository(pool *database.Pool) *PostgresTagRepository {
	return &PostgresTagRepository{pool: pool}
}

// List returns all tags.
func (r *PostgresTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	defer observe("tags.list", time.Now())

	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// Create stores a new tag.
func (r *PostgresTagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	defer observe("tags.create", time.Now())

	var tag models.Tag
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id, name, created_at`, name,
	).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		if _, ok := database.IsUniqueViolation(err); ok {
			return nil, models.ErrDuplicateTag
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return &tag, nil
}

// Delete removes a tag.
func (r *PostgresTagRepository) Delete(ctx context.Context, id int64) error {
	defer observe("tags.delete", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrTagNotFound
	}

	return nil
}

// Exists checks if a tag exists.
func (r *PostgresTagRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tags WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return exists, nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresTagRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

// PostgresTaskRepository implements TaskRepository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *database.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL-backed task repository.
func NewPostgresTaskRepository(pool *database.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

const taskColumns = `id, title, content, status, tag_id, user_id, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Content,
		&task.Status,
		&task.TagID,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser returns the user's tasks.
func (r *PostgresTaskRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	defer observe("tasks.list", time.Now())

	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// Get retrieves one of the user's tasks.
func (r *PostgresTaskRepository) Get(ctx context.Context, id, userID int64) (*models.Task, error) {
	defer observe("tasks.get", time.Now())

	task, err := scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Create stores a new task.
func (r *PostgresTaskRepository) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	defer observe("tasks.create", time.Now())

	query := `
		INSERT INTO tasks (title, content, status, tag_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, in.Title, in.Content, in.Status, in.TagID, userID))
	if err != nil {
		if _, ok := database.IsForeignKeyViolation(err); ok {
			return nil, models.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Update replaces the task's fields.
func (r *PostgresTaskRepository) Update(ctx context.Context, id, userID int64, in models.TaskInput) (*models.Task, error) {
	defer observe("tasks.update", time.Now())

	query := `
		UPDATE tasks
		SET title = $1, content = $2, status = $3, tag_id = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, in.Title, in.Content, in.Status, in.TagID, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		if _, ok := database.IsForeignKeyViolation(err); ok {
			return nil, models.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete removes one of the user's tasks.
func (r *PostgresTaskRepository) Delete(ctx context.Context, id, userID int64) error {
	defer observe("tasks.delete", time.Now())

	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresTaskRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
