package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gotodo/gotodo/internal/models"
)

// MemoryRepositories is an in-process backend for development and tests.
// The three repositories share one lock so tag deletion can clear task
// references the way the database's ON DELETE SET NULL does.
type MemoryRepositories struct {
	Users *MemoryUserRepository
	Tags  *MemoryTagRepository
	Tasks *MemoryTaskRepository
}

type memoryDB struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	tags   map[int64]models.Tag
	tasks  map[int64]models.Task
	nextID map[string]int64
	now    func() time.Time
}

func (db *memoryDB) id(table string) int64 {
	db.nextID[table]++
	return db.nextID[table]
}

// NewMemoryRepositories creates an empty in-memory backend.
func NewMemoryRepositories() *MemoryRepositories {
	db := &memoryDB{
		users:  make(map[int64]models.User),
		tags:   make(map[int64]models.Tag),
		tasks:  make(map[int64]models.Task),
		nextID: make(map[string]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
	return &MemoryRepositories{
		Users: &MemoryUserRepository{db: db},
		Tags:  &MemoryTagRepository{db: db},
		Tasks: &MemoryTaskRepository{db: db},
	}
}

// MemoryUserRepository implements UserRepository in memory.
type MemoryUserRepository struct {
	db *memoryDB
}

var _ UserRepository = (*MemoryUserRepository)(nil)

// Create stores a new user.
func (r *MemoryUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return nil, models.ErrDuplicateEmail
		}
		if u.Username == username {
			return nil, models.ErrDuplicateUser
		}
	}

	u := models.User{
		ID:           r.db.id("users"),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.db.now(),
	}
	r.db.users[u.ID] = u
	return &u, nil
}

// GetByID retrieves a user by id.
func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// HealthCheck always succeeds.
func (r *MemoryUserRepository) HealthCheck(context.Context) error {
	return nil
}

// MemoryTagRepository implements TagRepository in memory.
type MemoryTagRepository struct {
	db *memoryDB
}

var _ TagRepository = (*MemoryTagRepository)(nil)

// List returns all tags ordered by id.
func (r *MemoryTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tags := make([]models.Tag, 0, len(r.db.tags))
	for _, tag := range r.db.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

// Create stores a new tag.
func (r *MemoryTagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, tag := range r.db.tags {
		if tag.Name == name {
			return nil, models.ErrDuplicateTag
		}
	}

	tag := models.Tag{ID: r.db.id("tags"), Name: name, CreatedAt: r.db.now()}
	r.db.tags[tag.ID] = tag
	return &tag, nil
}

// Delete removes a tag and clears it from tasks.
func (r *MemoryTagRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tags[id]; !ok {
		return models.ErrTagNotFound
	}
	delete(r.db.tags, id)

	for taskID, task := range r.db.tasks {
		if task.TagID != nil && *task.TagID == id {
			task.TagID = nil
			r.db.tasks[taskID] = task
		}
	}
	return nil
}

// Exists checks if a tag exists.
func (r *MemoryTagRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.tags[id]
	return ok, nil
}

// HealthCheck always succeeds.
func (r *MemoryTagRepository) HealthCheck(context.Context) error {
	return nil
}

// MemoryTaskRepository implements TaskRepository in memory.
type MemoryTaskRepository struct {
	db *memoryDB
}

var _ TaskRepository = (*MemoryTaskRepository)(nil)

// ListByUser returns the user's tasks ordered by id.
func (r *MemoryTaskRepository) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tasks := []models.Task{}
	for _, task := range r.db.tasks {
		if task.UserID == userID {
			tasks = append(tasks, copyTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Get retrieves one of the user's tasks.
func (r *MemoryTaskRepository) Get(ctx context.Context, id, userID int64) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	task, ok := r.db.tasks[id]
	if !ok || task.UserID != userID {
		return nil, models.ErrTaskNotFound
	}
	task = copyTask(task)
	return &task, nil
}

// Create stores a new task.
func (r *MemoryTaskRepository) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.checkRefs(userID, in.TagID); err != nil {
		return nil, err
	}

	now := r.db.now()
	task := models.Task{
		ID:        r.db.id("tasks"),
		Title:     in.Title,
		Content:   in.Content,
		Status:    in.Status,
		TagID:     copyID(in.TagID),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.db.tasks[task.ID] = task
	task = copyTask(task)
	return &task, nil
}

// Update replaces the task's fields.
func (r *MemoryTaskRepository) Update(ctx context.Context, id, userID int64, in models.TaskInput) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	task, ok := r.db.tasks[id]
	if !ok || task.UserID != userID {
		return nil, models.ErrTaskNotFound
	}
	if err := r.checkRefs(userID, in.TagID); err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Content = in.Content
	task.Status = in.Status
	task.TagID = copyID(in.TagID)
	task.UpdatedAt = r.db.now()
	r.db.tasks[id] = task
	task = copyTask(task)
	return &task, nil
}

// Delete removes one of the user's tasks.
func (r *MemoryTaskRepository) Delete(ctx context.Context, id, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	task, ok := r.db.tasks[id]
	if !ok || task.UserID != userID {
		return models.ErrTaskNotFound
	}
	delete(r.db.tasks, id)
	return nil
}

// HealthCheck always succeeds.
func (r *MemoryTaskRepository) HealthCheck(context.Context) error {
	return nil
}

// checkRefs mirrors the foreign keys on tasks. Callers hold the lock.
func (r *MemoryTaskRepository) checkRefs(userID int64, tagID *int64) error {
	if _, ok := r.db.users[userID]; !ok {
		return models.ErrUserNotFound
	}
	if tagID != nil {
		if _, ok := r.db.tags[*tagID]; !ok {
			return models.ErrTagNotFound
		}
	}
	return nil
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTask(t models.Task) models.Task {
	t.TagID = copyID(t.TagID)
	return t
}
