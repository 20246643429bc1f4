package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/review/repository"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/query"
)

// ServiceInterface is the review business layer and the generic CRUD
// resource for /reviews.
type ServiceInterface interface {
	Name() string
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Review, error)
	Get(ctx context.Context, id uuid.UUID, populate ...string) (*model.Review, error)
	Create(ctx context.Context, req model.CreateReviewRequest) (*model.Review, error)
	Update(ctx context.Context, id uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListByTour(ctx context.Context, tourID uuid.UUID) ([]model.Review, error)
}

// RatingsRecalculator refreshes a tour's rating aggregate after its
// reviews changed.
type RatingsRecalculator interface {
	RecalculateRatings(ctx context.Context, tourID uuid.UUID) error
}

// AuthorLoader resolves review authors.
type AuthorLoader interface {
	FindProfiles(ctx context.Context, ids []uuid.UUID) ([]user.Profile, error)
}

type reviewService struct {
	repo    repository.RepositoryInterface
	ratings RatingsRecalculator
	authors AuthorLoader
}

func NewReviewService(repo repository.RepositoryInterface, ratings RatingsRecalculator, authors AuthorLoader) ServiceInterface {
	return &reviewService{repo: repo, ratings: ratings, authors: authors}
}

func (s *reviewService) Name() string {
	return "review"
}

func (s *reviewService) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Review, error) {
	reviews, err := s.repo.List(ctx, scope, opts)
	if err != nil {
		return nil, err
	}
	return reviews, s.populateAuthors(ctx, reviews)
}

func (s *reviewService) ListByTour(ctx context.Context, tourID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.repo.ListByTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return reviews, s.populateAuthors(ctx, reviews)
}

func (s *reviewService) Get(ctx context.Context, id uuid.UUID, _ ...string) (*model.Review, error) {
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, model.MapError(err)
	}
	return s.withAuthor(ctx, rv)
}

func (s *reviewService) Create(ctx context.Context, req model.CreateReviewRequest) (*model.Review, error) {
	rv := req.ToReview()
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, model.MapError(err)
	}

	if err := s.recalculate(ctx, rv.TourID); err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, rv)
}

func (s *reviewService) Update(ctx context.Context, id uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error) {
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, model.MapError(err)
	}

	req.Apply(rv)
	if err := rv.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, model.MapError(err)
	}

	if err := s.recalculate(ctx, rv.TourID); err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, rv)
}

// Delete looks the review up first: the tour id is needed for the
// recompute once the row is gone.
func (s *reviewService) Delete(ctx context.Context, id uuid.UUID) error {
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.MapError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return model.MapError(err)
	}
	return s.recalculate(ctx, rv.TourID)
}

func (s *reviewService) recalculate(ctx context.Context, tourID uuid.UUID) error {
	if err := s.ratings.RecalculateRatings(ctx, tourID); err != nil {
		return fmt.Errorf("recalculate tour %s ratings: %w", tourID, err)
	}
	return nil
}

func (s *reviewService) withAuthor(ctx context.Context, rv *model.Review) (*model.Review, error) {
	reviews := []model.Review{*rv}
	if err := s.populateAuthors(ctx, reviews); err != nil {
		return nil, err
	}
	return &reviews[0], nil
}

func (s *reviewService) populateAuthors(ctx context.Context, reviews []model.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(reviews))
	for _, rv := range reviews {
		if rv.UserID != uuid.Nil && !seen[rv.UserID] {
			seen[rv.UserID] = true
			ids = append(ids, rv.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := s.authors.FindProfiles(ctx, ids)
	if err != nil {
		return fmt.Errorf("load review authors: %w", err)
	}
	byID := make(map[uuid.UUID]user.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for i := range reviews {
		if p, ok := byID[reviews[i].UserID]; ok {
			reviews[i].User = model.Author(p)
		}
	}
	return nil
}
