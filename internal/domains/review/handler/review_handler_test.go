package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/query"
)

type stubAuth struct {
	user.AuthService
	current *user.User
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*user.User, error) {
	if token != "valid" {
		return nil, user.ErrNotLoggedIn
	}
	return s.current, nil
}

type fakeReviews struct {
	created   []model.CreateReviewRequest
	lastScope query.Scope
	reviews   map[uuid.UUID]*model.Review
}

func (f *fakeReviews) Name() string { return "review" }

func (f *fakeReviews) List(_ context.Context, scope query.Scope, _ *query.Options) ([]model.Review, error) {
	f.lastScope = scope
	return nil, nil
}

func (f *fakeReviews) Get(_ context.Context, id uuid.UUID, _ ...string) (*model.Review, error) {
	if rv, ok := f.reviews[id]; ok {
		return rv, nil
	}
	return nil, model.MapError(model.ErrReviewNotFound)
}

func (f *fakeReviews) Create(_ context.Context, req model.CreateReviewRequest) (*model.Review, error) {
	for _, prev := range f.created {
		if prev.TourID == req.TourID && prev.UserID == req.UserID {
			return nil, model.MapError(model.ErrAlreadyReviewed)
		}
	}
	f.created = append(f.created, req)
	rv := req.ToReview()
	rv.ID = uuid.New()
	f.reviews[rv.ID] = rv
	return rv, nil
}

func (f *fakeReviews) Update(ctx context.Context, id uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error) {
	rv, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(rv)
	return rv, nil
}

func (f *fakeReviews) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return model.MapError(model.ErrReviewNotFound)
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviews) ListByTour(context.Context, uuid.UUID) ([]model.Review, error) {
	return nil, nil
}

func newRouter(svc *fakeReviews, current *user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReviewHandler(svc)
	auth := &stubAuth{current: current}

	r := gin.New()
	r.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{}))

	for _, prefix := range []string{"/api/v1/reviews", "/api/v1/tours/:tourId/reviews"} {
		g := r.Group(prefix, middleware.Protect(auth))
		g.GET("", h.GetAll)
		g.POST("", middleware.RestrictTo(user.RoleUser), h.CreateOne)
		g.DELETE("/:id", middleware.RestrictTo(user.RoleUser, user.RoleAdmin), h.DeleteOne)
	}
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func fixtures() (*fakeReviews, *user.User) {
	return &fakeReviews{reviews: map[uuid.UUID]*model.Review{}},
		&user.User{ID: uuid.New(), Name: "Laura Wilson", Role: user.RoleUser}
}

func TestNestedCreateTakesTourFromPathAndUserFromToken(t *testing.T) {
	svc, current := fixtures()
	r := newRouter(svc, current)
	tourID := uuid.New()

	rec := send(r, http.MethodPost, "/api/v1/tours/"+tourID.String()+"/reviews",
		`{"review":"Loved it","rating":5,"user":"`+uuid.NewString()+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.created, 1)
	assert.Equal(t, tourID, svc.created[0].TourID)
	assert.Equal(t, current.ID, svc.created[0].UserID)
}

func TestSecondReviewIsDuplicate(t *testing.T) {
	svc, current := fixtures()
	r := newRouter(svc, current)
	path := "/api/v1/tours/" + uuid.NewString() + "/reviews"

	rec := send(r, http.MethodPost, path, `{"review":"Loved it","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = send(r, http.MethodPost, path, `{"review":"Still love it","rating":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have already reviewed this tour.")
}

func TestCreateWithoutTour(t *testing.T) {
	svc, current := fixtures()
	r := newRouter(svc, current)

	rec := send(r, http.MethodPost, "/api/v1/reviews", `{"review":"Loved it","rating":5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review must belong to a tour.")
	assert.Empty(t, svc.created)
}

func TestCreateRestrictedToUsers(t *testing.T) {
	svc, current := fixtures()
	current.Role = user.RoleGuide
	r := newRouter(svc, current)

	rec := send(r, http.MethodPost, "/api/v1/tours/"+uuid.NewString()+"/reviews", `{"review":"Mine","rating":5}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.created)
}

func TestNestedListIsScopedToTour(t *testing.T) {
	svc, current := fixtures()
	r := newRouter(svc, current)
	tourID := uuid.New()

	rec := send(r, http.MethodGet, "/api/v1/tours/"+tourID.String()+"/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, query.Scope{"tour_id": tourID}, svc.lastScope)
	assert.Contains(t, rec.Body.String(), `"results":0`)

	rec = send(r, http.MethodGet, "/api/v1/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastScope)
}

func TestDeleteTwice(t *testing.T) {
	svc, current := fixtures()
	r := newRouter(svc, current)
	id := uuid.New()
	svc.reviews[id] = &model.Review{ID: id}

	rec := send(r, http.MethodDelete, "/api/v1/reviews/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(r, http.MethodDelete, "/api/v1/reviews/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No review found with that ID")
}
