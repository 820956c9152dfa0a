package services

import (
	"context"

	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/repository"
)

// TagService defines the interface for tag operations.
type TagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	Create(ctx context.Context, in models.TagCreate) (*models.Tag, error)
	Delete(ctx context.Context, id int64) error
}

// TagServiceImpl implements TagService.
type TagServiceImpl struct {
	repo repository.TagRepository
}

// NewTagService creates a new TagService instance.
func NewTagService(repo repository.TagRepository) *TagServiceImpl {
	return &TagServiceImpl{repo: repo}
}

// List returns every tag.
func (s *TagServiceImpl) List(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// Create stores a tag. An empty name is allowed.
func (s *TagServiceImpl) Create(ctx context.Context, in models.TagCreate) (*models.Tag, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in.Name)
}

// Delete removes a tag.
func (s *TagServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
