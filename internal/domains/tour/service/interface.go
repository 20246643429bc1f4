package service

import (
	"context"

	"github.com/google/uuid"

	reviewmodel "tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/query"
)

// PopulateReviews expands the tour's reviews on read-one.
const PopulateReviews = "reviews"

// ServiceInterface is the tour business layer. It doubles as the generic
// CRUD resource for /tours.
type ServiceInterface interface {
	Name() string
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Tour, error)
	Get(ctx context.Context, id uuid.UUID, populate ...string) (*model.Tour, error)
	Create(ctx context.Context, req model.CreateTourRequest) (*model.Tour, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateTourRequest) (*model.Tour, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// GetBySlug backs the tour detail page; reviews are always populated.
	GetBySlug(ctx context.Context, slug string) (*model.Tour, error)

	Stats(ctx context.Context) ([]model.DifficultyStats, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	Within(ctx context.Context, distance float64, center model.LatLng, unit model.Unit) ([]model.Tour, error)
	Distances(ctx context.Context, center model.LatLng, unit model.Unit) ([]model.TourDistance, error)
}

// GuideLoader resolves guide ids to public profiles.
type GuideLoader interface {
	FindProfiles(ctx context.Context, ids []uuid.UUID) ([]user.Profile, error)
}

// ReviewLister loads the reviews shown on a tour, authors included.
type ReviewLister interface {
	ListByTour(ctx context.Context, tourID uuid.UUID) ([]reviewmodel.Review, error)
}
