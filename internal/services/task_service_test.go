package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/gotodo/internal/models"
)

func tagID(v int64) *int64 { return &v }

func TestTaskService_Create(t *testing.T) {
	tasks := &MockTaskRepository{}
	tags := &MockTagRepository{}
	svc := NewTaskService(tasks, tags)

	want := models.TaskInput{Title: "Test Task", Content: "Test content", Status: models.StatusInProgress, TagID: tagID(3)}
	tags.On("Exists", mock.Anything, int64(3)).Return(true, nil)
	tasks.On("Create", mock.Anything, int64(1), want).Return(&models.Task{ID: 10, Title: "Test Task", UserID: 1}, nil)

	task, err := svc.Create(context.Background(), 1, models.TaskInput{
		Title: "  Test Task ", Content: "Test content", Status: "in_progress", TagID: tagID(3),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), task.ID)
	tasks.AssertExpectations(t)
}

func TestTaskService_CreateDefaultsStatus(t *testing.T) {
	tasks := &MockTaskRepository{}
	svc := NewTaskService(tasks, &MockTagRepository{})

	tasks.On("Create", mock.Anything, int64(1), models.TaskInput{Title: "t", Status: models.StatusPending}).
		Return(&models.Task{ID: 1}, nil)

	_, err := svc.Create(context.Background(), 1, models.TaskInput{Title: "t"})
	require.NoError(t, err)
	tasks.AssertExpectations(t)
}

func TestTaskService_CreateRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   models.TaskInput
		exists  bool
		wantErr error
	}{
		{"empty title", models.TaskInput{Title: "", Content: "Test content", Status: "PENDING"}, true, models.ErrValidation},
		{"invalid status", models.TaskInput{Title: "Test Task", Status: "INVALID_STATUS"}, true, models.ErrValidation},
		{"unknown tag", models.TaskInput{Title: "Test Task", TagID: tagID(99)}, false, models.ErrTagNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &MockTaskRepository{}
			tags := &MockTagRepository{}
			tags.On("Exists", mock.Anything, mock.Anything).Return(tt.exists, nil)
			svc := NewTaskService(tasks, tags)

			_, err := svc.Create(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTaskService_TagLookupError(t *testing.T) {
	tags := &MockTagRepository{}
	tags.On("Exists", mock.Anything, int64(1)).Return(false, errors.New("db down"))
	svc := NewTaskService(&MockTaskRepository{}, tags)

	_, err := svc.Update(context.Background(), 1, 2, models.TaskInput{Title: "t", TagID: tagID(1)})
	assert.EqualError(t, err, "db down")
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	tasks := &MockTaskRepository{}
	svc := NewTaskService(tasks, &MockTagRepository{})

	in := models.TaskInput{Title: "t", Status: models.StatusCompleted}
	tasks.On("Update", mock.Anything, int64(5), int64(1), in).Return(&models.Task{ID: 5, Status: models.StatusCompleted}, nil)
	tasks.On("Update", mock.Anything, int64(6), int64(1), in).Return(nil, models.ErrTaskNotFound)
	tasks.On("Delete", mock.Anything, int64(5), int64(1)).Return(nil)

	task, err := svc.Update(context.Background(), 1, 5, in)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, task.Status)

	_, err = svc.Update(context.Background(), 1, 6, in)
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	assert.NoError(t, svc.Delete(context.Background(), 1, 5))
	tasks.AssertExpectations(t)
}

func TestTaskService_ListForUser(t *testing.T) {
	tasks := &MockTaskRepository{}
	tasks.On("ListByUser", mock.Anything, int64(1)).Return(nil, nil)
	svc := NewTaskService(tasks, &MockTagRepository{})

	list, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
