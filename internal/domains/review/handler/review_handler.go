package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/review/service"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/crud"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/query"
)

// TourParam is the path parameter of the nested /tours/:tourId/reviews routes.
const TourParam = "tourId"

// ReviewHandler serves /reviews and /tours/:tourId/reviews.
type ReviewHandler struct {
	*crud.Handlers[model.Review, model.CreateReviewRequest, model.UpdateReviewRequest]
}

func NewReviewHandler(svc service.ServiceInterface) *ReviewHandler {
	h := crud.New[model.Review, model.CreateReviewRequest, model.UpdateReviewRequest](
		svc, crud.WithScope(scopeToTour),
	)
	h.BeforeCreate(setTourAndAuthor)
	return &ReviewHandler{Handlers: h}
}

// scopeToTour limits nested listings to the tour in the path.
func scopeToTour(c *gin.Context) query.Scope {
	raw := c.Param(TourParam)
	if raw == "" {
		return nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return query.Scope{"tour_id": id}
	}
	// left to the database, which rejects it as an invalid id
	return query.Scope{"tour_id": raw}
}

// setTourAndAuthor takes the tour from the path when the body has none and
// always makes the caller the author.
func setTourAndAuthor(c *gin.Context, req *model.CreateReviewRequest) error {
	if raw := c.Param(TourParam); raw != "" && req.TourID == uuid.Nil {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperror.InvalidID(raw)
		}
		req.TourID = id
	}

	current, ok := middleware.CurrentUser(c)
	if !ok {
		return user.ErrNotLoggedIn
	}
	req.UserID = current.ID
	return nil
}
