package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/gotodo/internal/models"
)

func TestTagService(t *testing.T) {
	ctx := context.Background()
	repo := &MockTagRepository{}
	svc := NewTagService(repo)

	repo.On("List", mock.Anything).Return(nil, nil).Once()
	repo.On("Create", mock.Anything, "Test Tag").Return(&models.Tag{ID: 1, Name: "Test Tag"}, nil)
	repo.On("Create", mock.Anything, "").Return(&models.Tag{ID: 2, Name: ""}, nil)
	repo.On("Delete", mock.Anything, int64(3)).Return(models.ErrTagNotFound)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tags)

	tag, err := svc.Create(ctx, models.TagCreate{Name: " Test Tag "})
	require.NoError(t, err)
	assert.Equal(t, "Test Tag", tag.Name)

	tag, err = svc.Create(ctx, models.TagCreate{Name: ""})
	require.NoError(t, err)
	assert.Equal(t, int64(2), tag.ID)

	_, err = svc.Create(ctx, models.TagCreate{Name: strings.Repeat("x", 101)})
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.ErrorIs(t, svc.Delete(ctx, 3), models.ErrTagNotFound)
	repo.AssertExpectations(t)
}
