package service

import (
	"context"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/query"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, rv *model.Review) error {
	args := m.Called(ctx, rv)
	if args.Error(0) == nil {
		rv.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	args := m.Called(ctx, id)
	rv, _ := args.Get(0).(*model.Review)
	return rv, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Review, error) {
	args := m.Called(ctx, scope, opts)
	rv, _ := args.Get(0).([]model.Review)
	return rv, args.Error(1)
}

func (m *mockRepo) ListByTour(ctx context.Context, tourID uuid.UUID) ([]model.Review, error) {
	args := m.Called(ctx, tourID)
	rv, _ := args.Get(0).([]model.Review)
	return rv, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, rv *model.Review) error {
	return m.Called(ctx, rv).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockRatings struct {
	mock.Mock
}

func (m *mockRatings) RecalculateRatings(ctx context.Context, tourID uuid.UUID) error {
	return m.Called(ctx, tourID).Error(0)
}

type mockAuthors struct {
	mock.Mock
}

func (m *mockAuthors) FindProfiles(ctx context.Context, ids []uuid.UUID) ([]user.Profile, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]user.Profile)
	return p, args.Error(1)
}

func setup() (ServiceInterface, *mockRepo, *mockRatings, *mockAuthors) {
	repo, ratings, authors := &mockRepo{}, &mockRatings{}, &mockAuthors{}
	return NewReviewService(repo, ratings, authors), repo, ratings, authors
}

func rating(v float64) *float64 { return &v }

func TestCreateRecalculatesTourRatings(t *testing.T) {
	svc, repo, ratings, authors := setup()
	ctx := context.Background()
	tourID, userID := uuid.New(), uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*model.Review")).Return(nil)
	ratings.On("RecalculateRatings", ctx, tourID).Return(nil).Once()
	authors.On("FindProfiles", ctx, []uuid.UUID{userID}).
		Return([]user.Profile{{ID: userID, Name: "Laura Wilson", Email: "laura@example.com", Photo: "user-4.jpg"}}, nil)

	got, err := svc.Create(ctx, model.CreateReviewRequest{
		Review: "Cras mollis nisi parturient mi nec aliquet suspendisse.",
		Rating: rating(4),
		TourID: tourID,
		UserID: userID,
	})

	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
	require.NotNil(t, got.User)
	assert.Equal(t, "Laura Wilson", got.User.Name)
	assert.Empty(t, got.User.Email)
	ratings.AssertExpectations(t)
}

func TestCreateDuplicateReview(t *testing.T) {
	svc, repo, ratings, _ := setup()
	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(model.ErrAlreadyReviewed)

	_, err := svc.Create(ctx, model.CreateReviewRequest{
		Review: "Second opinion", Rating: rating(3), TourID: uuid.New(), UserID: uuid.New(),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindDuplicate, appErr.Kind)
	assert.Equal(t, "You have already reviewed this tour.", appErr.Message)
	ratings.AssertNotCalled(t, "RecalculateRatings", mock.Anything, mock.Anything)
}

func TestUpdateRecalculatesTourRatings(t *testing.T) {
	svc, repo, ratings, authors := setup()
	ctx := context.Background()
	existing := &model.Review{ID: uuid.New(), Review: "Good", Rating: 3, TourID: uuid.New(), UserID: uuid.New()}

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)
	ratings.On("RecalculateRatings", ctx, existing.TourID).Return(nil).Once()
	authors.On("FindProfiles", ctx, []uuid.UUID{existing.UserID}).Return([]user.Profile{}, nil)

	got, err := svc.Update(ctx, existing.ID, model.UpdateReviewRequest{Rating: rating(5)})

	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
	assert.Equal(t, "Good", got.Review)
	ratings.AssertExpectations(t)
}

func TestUpdateRejectsOutOfRangeRating(t *testing.T) {
	svc, repo, ratings, _ := setup()
	ctx := context.Background()
	existing := &model.Review{ID: uuid.New(), Review: "Good", Rating: 3, TourID: uuid.New()}
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := svc.Update(ctx, existing.ID, model.UpdateReviewRequest{Rating: rating(6)})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Rating must be between 0 and 5", verrs["rating"].Error())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	ratings.AssertNotCalled(t, "RecalculateRatings", mock.Anything, mock.Anything)
}

func TestDeleteRecalculatesTourRatings(t *testing.T) {
	svc, repo, ratings, _ := setup()
	ctx := context.Background()
	existing := &model.Review{ID: uuid.New(), TourID: uuid.New()}

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Delete", ctx, existing.ID).Return(nil)
	ratings.On("RecalculateRatings", ctx, existing.TourID).Return(nil).Once()

	require.NoError(t, svc.Delete(ctx, existing.ID))
	ratings.AssertExpectations(t)
}

func TestDeleteMissingReview(t *testing.T) {
	svc, repo, ratings, _ := setup()
	ctx := context.Background()
	id := uuid.New()
	repo.On("FindByID", ctx, id).Return(nil, model.ErrReviewNotFound)

	err := svc.Delete(ctx, id)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "No review found with that ID", appErr.Message)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	ratings.AssertNotCalled(t, "RecalculateRatings", mock.Anything, mock.Anything)
}

func TestRecalculateFailureIsReturned(t *testing.T) {
	svc, repo, ratings, _ := setup()
	ctx := context.Background()
	existing := &model.Review{ID: uuid.New(), TourID: uuid.New()}
	boom := errors.New("deadlock detected")

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("Delete", ctx, existing.ID).Return(nil)
	ratings.On("RecalculateRatings", ctx, existing.TourID).Return(boom)

	assert.ErrorIs(t, svc.Delete(ctx, existing.ID), boom)
}

func TestListByTourLoadsEachAuthorOnce(t *testing.T) {
	svc, repo, _, authors := setup()
	ctx := context.Background()
	tourID, a, b := uuid.New(), uuid.New(), uuid.New()
	repo.On("ListByTour", ctx, tourID).Return([]model.Review{
		{ID: uuid.New(), UserID: a}, {ID: uuid.New(), UserID: b}, {ID: uuid.New(), UserID: a},
	}, nil)
	authors.On("FindProfiles", ctx, []uuid.UUID{a, b}).
		Return([]user.Profile{{ID: a, Name: "A"}, {ID: b, Name: "B"}}, nil).Once()

	got, err := svc.ListByTour(ctx, tourID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[2].User.Name)
	authors.AssertExpectations(t)
}
