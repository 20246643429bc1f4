package repository

import (
	"context"

	"github.com/google/uuid"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/shared/query"
)

// RepositoryInterface is the data access contract for tours. Secret tours
// are invisible to every read except the aggregates.
type RepositoryInterface interface {
	Create(ctx context.Context, t *model.Tour) error
	// FindByID returns model.ErrTourNotFound when missing or secret.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tour, error)
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Tour, error)
	Update(ctx context.Context, t *model.Tour) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RecalculateRatings recomputes ratingsAverage and ratingsQuantity from
	// the tour's reviews. A tour without reviews goes back to the defaults.
	RecalculateRatings(ctx context.Context, tourID uuid.UUID) error

	Stats(ctx context.Context) ([]model.DifficultyStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	// Within returns the tours starting at most radius radians from center.
	Within(ctx context.Context, center model.LatLng, radius float64) ([]model.Tour, error)
	// Distances returns every located tour with its distance from center,
	// nearest first. multiplier converts radians to the wanted unit.
	Distances(ctx context.Context, center model.LatLng, multiplier float64) ([]model.TourDistance, error)
}
