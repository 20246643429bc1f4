package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/domains/tour/repository"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/query"
	"tours-backend/internal/shared/utils"
)

type tourService struct {
	repo    repository.RepositoryInterface
	guides  GuideLoader
	reviews ReviewLister
}

func NewTourService(repo repository.RepositoryInterface, guides GuideLoader, reviews ReviewLister) ServiceInterface {
	return &tourService{repo: repo, guides: guides, reviews: reviews}
}

func (s *tourService) Name() string {
	return "tour"
}

func (s *tourService) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Tour, error) {
	tours, err := s.repo.List(ctx, scope, opts)
	if err != nil {
		return nil, err
	}
	if err := s.populateGuides(ctx, tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *tourService) Get(ctx context.Context, id uuid.UUID, populate ...string) (*model.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, model.MapError(err)
	}
	return s.expand(ctx, t, slices.Contains(populate, PopulateReviews))
}

func (s *tourService) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	t, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, model.MapError(err)
	}
	return s.expand(ctx, t, true)
}

func (s *tourService) expand(ctx context.Context, t *model.Tour, withReviews bool) (*model.Tour, error) {
	tours := []model.Tour{*t}
	if err := s.populateGuides(ctx, tours); err != nil {
		return nil, err
	}
	out := &tours[0]

	if withReviews {
		reviews, err := s.reviews.ListByTour(ctx, out.ID)
		if err != nil {
			return nil, fmt.Errorf("load tour reviews: %w", err)
		}
		out.Reviews = reviews
	}
	return out, nil
}

// populateGuides derives the virtual fields and resolves every guide of
// every tour with a single lookup.
func (s *tourService) populateGuides(ctx context.Context, tours []model.Tour) error {
	var ids []uuid.UUID
	for i := range tours {
		tours[i].Derive()
		tours[i].Guides = []user.Profile{}
		ids = append(ids, tours[i].GuideIDs...)
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := s.guides.FindProfiles(ctx, ids)
	if err != nil {
		return fmt.Errorf("load guides: %w", err)
	}
	byID := make(map[uuid.UUID]user.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for i := range tours {
		for _, id := range tours[i].GuideIDs {
			// deactivated or deleted guides are dropped
			if p, ok := byID[id]; ok {
				tours[i].Guides = append(tours[i].Guides, p)
			}
		}
	}
	return nil
}

func (s *tourService) Create(ctx context.Context, req model.CreateTourRequest) (*model.Tour, error) {
	t := req.ToTour()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.Slug = utils.GenerateSlug(t.Name)

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.expand(ctx, t, false)
}

func (s *tourService) Update(ctx context.Context, id uuid.UUID, req model.UpdateTourRequest) (*model.Tour, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, model.MapError(err)
	}

	if renamed := req.Apply(t); renamed {
		t.Slug = utils.GenerateSlug(t.Name)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, model.MapError(err)
	}
	return s.expand(ctx, t, false)
}

func (s *tourService) Delete(ctx context.Context, id uuid.UUID) error {
	return model.MapError(s.repo.Delete(ctx, id))
}

// ========================================
// AGGREGATES
// ========================================

func (s *tourService) Stats(ctx context.Context) ([]model.DifficultyStats, error) {
	return s.repo.Stats(ctx)
}

func (s *tourService) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	if year < 1 || year > 9999 {
		return nil, model.ErrBadYear
	}
	return s.repo.MonthlyPlan(ctx, year)
}

func (s *tourService) Within(ctx context.Context, distance float64, center model.LatLng, unit model.Unit) ([]model.Tour, error) {
	if distance <= 0 {
		return nil, model.ErrBadRadius
	}

	tours, err := s.repo.Within(ctx, center, unit.RadiusRadians(distance))
	if err != nil {
		return nil, err
	}
	if err := s.populateGuides(ctx, tours); err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *tourService) Distances(ctx context.Context, center model.LatLng, unit model.Unit) ([]model.TourDistance, error) {
	return s.repo.Distances(ctx, center, unit.DistanceMultiplier())
}
