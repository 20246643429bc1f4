package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/pkg/cache"
	"tours-backend/pkg/logger"
)

const TourCacheTTL = 15 * time.Minute

func tourKey(id uuid.UUID) string {
	return "tour:" + id.String()
}

// cachedTour carries the guide ids the public JSON form leaves out.
type cachedTour struct {
	Tour     *model.Tour `json:"tour"`
	GuideIDs []uuid.UUID `json:"guideIds"`
}

// cachedRepository serves FindByID from the cache and drops the entry on
// every write touching the tour. Cache failures fall through to the database.
type cachedRepository struct {
	RepositoryInterface
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRepository(next RepositoryInterface, c cache.Cache) RepositoryInterface {
	return &cachedRepository{RepositoryInterface: next, cache: c, ttl: TourCacheTTL}
}

func (r *cachedRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	var entry cachedTour
	found, err := r.cache.Get(ctx, tourKey(id), &entry)
	if err != nil {
		logger.Error("tour cache read failed", err)
	}
	if found && entry.Tour != nil {
		entry.Tour.GuideIDs = entry.GuideIDs
		return entry.Tour, nil
	}

	t, err := r.RepositoryInterface.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, tourKey(id), cachedTour{Tour: t, GuideIDs: t.GuideIDs}, r.ttl); err != nil {
		logger.Error("tour cache write failed", err)
	}
	return t, nil
}

func (r *cachedRepository) Update(ctx context.Context, t *model.Tour) error {
	if err := r.RepositoryInterface.Update(ctx, t); err != nil {
		return err
	}
	r.invalidate(ctx, t.ID)
	return nil
}

func (r *cachedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.RepositoryInterface.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *cachedRepository) RecalculateRatings(ctx context.Context, tourID uuid.UUID) error {
	if err := r.RepositoryInterface.RecalculateRatings(ctx, tourID); err != nil {
		return err
	}
	r.invalidate(ctx, tourID)
	return nil
}

func (r *cachedRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, tourKey(id)); err != nil {
		logger.Error("tour cache invalidation failed", err)
	}
}
