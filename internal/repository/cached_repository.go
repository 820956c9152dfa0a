package repository

import (
	"context"

	"github.com/gotodo/gotodo/internal/cache"
	"github.com/gotodo/gotodo/internal/models"
)

// CachedTagRepository wraps a TagRepository with a cached tag list.
// Reads fall back to the database on a miss; writes go to the database and
// then invalidate the list.
type CachedTagRepository struct {
	repo  TagRepository
	cache cache.TagCacher
}

var _ TagRepository = (*CachedTagRepository)(nil)

// NewCachedTagRepository creates a new cached tag repository.
func NewCachedTagRepository(repo TagRepository, tagCache cache.TagCacher) *CachedTagRepository {
	return &CachedTagRepository{repo: repo, cache: tagCache}
}

// List returns the cached list, loading it from the database on a miss.
func (c *CachedTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	if tags, err := c.cache.GetAll(ctx); err == nil {
		return tags, nil
	}

	tags, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	// Cache errors are not fatal; the next read retries.
	_ = c.cache.SetAll(ctx, tags)

	return tags, nil
}

// Create stores a tag and invalidates the cached list.
func (c *CachedTagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := c.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Invalidate(ctx)
	return tag, nil
}

// Delete removes a tag and invalidates the cached list.
func (c *CachedTagRepository) Delete(ctx context.Context, id int64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.cache.Invalidate(ctx)
	return nil
}

// Exists checks the cached list first, then the database.
func (c *CachedTagRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if tags, err := c.cache.GetAll(ctx); err == nil {
		for _, tag := range tags {
			if tag.ID == id {
				return true, nil
			}
		}
	}
	return c.repo.Exists(ctx, id)
}

// HealthCheck checks both cache and database health.
func (c *CachedTagRepository) HealthCheck(ctx context.Context) error {
	if err := c.cache.Ping(ctx); err != nil {
		return err
	}
	return c.repo.HealthCheck(ctx)
}
