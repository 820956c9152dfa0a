package models

import (
	"encoding/json"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseTaskStatus parses a status case-insensitively.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Task is a to-do item owned by a user.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    TaskStatus `json:"status"`
	TagID     *int64     `json:"tag_id,omitempty"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TaskInput is the body of task create and update requests.
type TaskInput struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  TaskStatus `json:"status"`
	TagID   *int64     `json:"tag_id,omitempty"`
}

// UnmarshalJSON accepts the tag reference as either "tag_id" or "tagId".
// When both are present, "tag_id" wins.
func (t *TaskInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string     `json:"title"`
		Content  string     `json:"content"`
		Status   TaskStatus `json:"status"`
		TagID    *int64     `json:"tag_id"`
		TagIDAlt *int64     `json:"tagId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Title = raw.Title
	t.Content = raw.Content
	t.Status = raw.Status
	t.TagID = raw.TagID
	if t.TagID == nil {
		t.TagID = raw.TagIDAlt
	}
	return nil
}

// Normalize trims the title and upper-cases the status. An empty status
// defaults to PENDING.
func (t *TaskInput) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Status = TaskStatus(strings.ToUpper(strings.TrimSpace(string(t.Status))))
	if t.Status == "" {
		t.Status = StatusPending
	}
}

// Validate checks task input.
func (t TaskInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Content, validation.Length(0, 10000)),
		validation.Field(&t.Status, validation.Required,
			validation.In(StatusPending, StatusInProgress, StatusCompleted).Error("must be one of PENDING, IN_PROGRESS, COMPLETED")),
	))
}
