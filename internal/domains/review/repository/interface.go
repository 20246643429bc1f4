package repository

import (
	"context"

	"github.com/google/uuid"

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/shared/query"
)

// RepositoryInterface is the data access contract for reviews.
type RepositoryInterface interface {
	// Create returns model.ErrAlreadyReviewed for a second review of the same
	// tour by the same user and model.ErrTourMissing for an unknown tour.
	Create(ctx context.Context, rv *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Review, error)
	// ListByTour returns the reviews of one tour, newest first.
	ListByTour(ctx context.Context, tourID uuid.UUID) ([]model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}
