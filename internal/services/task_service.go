package services

import (
	"context"

	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/repository"
)

// TaskService defines the interface for task operations. All of them act on
// the calling user's tasks only.
type TaskService interface {
	ListForUser(ctx context.Context, userID int64) ([]models.Task, error)
	Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, userID, id int64, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	tasks repository.TaskRepository
	tags  repository.TagRepository
}

// NewTaskService creates a new TaskService instance.
func NewTaskService(tasks repository.TaskRepository, tags repository.TagRepository) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks, tags: tags}
}

// ListForUser returns the user's tasks.
func (s *TaskServiceImpl) ListForUser(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Create validates the input and stores a task for the user.
func (s *TaskServiceImpl) Create(ctx context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	task, err := s.tasks.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	metrics.RecordTaskCreated()
	return task, nil
}

// Update replaces one of the user's tasks.
func (s *TaskServiceImpl) Update(ctx context.Context, userID, id int64, in models.TaskInput) (*models.Task, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	return s.tasks.Update(ctx, id, userID, in)
}

// Delete removes one of the user's tasks.
func (s *TaskServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	return s.tasks.Delete(ctx, id, userID)
}

func (s *TaskServiceImpl) prepare(ctx context.Context, in *models.TaskInput) error {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if in.TagID == nil {
		return nil
	}
	ok, err := s.tags.Exists(ctx, *in.TagID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrTagNotFound
	}
	return nil
}
