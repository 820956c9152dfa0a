package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gotodo/gotodo/internal/cache"
	"github.com/gotodo/gotodo/internal/models"
)

// MockTagRepository is a mock implementation of TagRepository.
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockTagRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTagRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTagRepository) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func setupCachedTagRepo(t *testing.T) (*CachedTagRepository, *MockTagRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tagCache := cache.NewTagCache(cache.NewRedisCacheFromClient(client), "test:", time.Minute)
	repo := &MockTagRepository{}
	return NewCachedTagRepository(repo, tagCache), repo, mr
}

func TestCachedTagRepository_List(t *testing.T) {
	ctx := context.Background()
	cached, repo, mr := setupCachedTagRepo(t)
	tags := []models.Tag{{ID: 1, Name: "work"}, {ID: 2, Name: "home"}}
	repo.On("List", mock.Anything).Return(tags, nil).Once()

	got, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, mr.Exists("test:tags:all"))

	// second read is served from Redis
	got, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "home", got[1].Name)
	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestCachedTagRepository_ListError(t *testing.T) {
	cached, repo, mr := setupCachedTagRepo(t)
	repo.On("List", mock.Anything).Return(nil, errors.New("db down"))

	_, err := cached.List(context.Background())
	assert.Error(t, err)
	assert.False(t, mr.Exists("test:tags:all"))
}

func TestCachedTagRepository_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cached, repo, mr := setupCachedTagRepo(t)
	repo.On("List", mock.Anything).Return([]models.Tag{{ID: 1, Name: "work"}}, nil)
	repo.On("Create", mock.Anything, "new").Return(&models.Tag{ID: 2, Name: "new"}, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	repo.On("Delete", mock.Anything, int64(9)).Return(models.ErrTagNotFound)

	_, err := cached.List(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("test:tags:all"))

	_, err = cached.Create(ctx, "new")
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:tags:all"))

	_, err = cached.List(ctx)
	require.NoError(t, err)
	require.NoError(t, cached.Delete(ctx, 1))
	assert.False(t, mr.Exists("test:tags:all"))

	_, err = cached.List(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, cached.Delete(ctx, 9), models.ErrTagNotFound)
	assert.True(t, mr.Exists("test:tags:all"))
}

func TestCachedTagRepository_Exists(t *testing.T) {
	ctx := context.Background()
	cached, repo, _ := setupCachedTagRepo(t)
	repo.On("List", mock.Anything).Return([]models.Tag{{ID: 1, Name: "work"}}, nil)
	repo.On("Exists", mock.Anything, int64(2)).Return(false, nil)

	_, err := cached.List(ctx)
	require.NoError(t, err)

	ok, err := cached.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Exists", mock.Anything, int64(1))

	ok, err = cached.Exists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedTagRepository_HealthCheck(t *testing.T) {
	cached, repo, mr := setupCachedTagRepo(t)
	repo.On("HealthCheck", mock.Anything).Return(nil)

	assert.NoError(t, cached.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cached.HealthCheck(context.Background()))
}
