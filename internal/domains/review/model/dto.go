package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"tours-backend/internal/shared/query"
)

const (
	MinRating = 0
	MaxRating = 5
)

func ratingRules() []validation.Rule {
	return []validation.Rule{
		validation.Min(float64(MinRating)).Error("Rating must be between 0 and 5"),
		validation.Max(float64(MaxRating)).Error("Rating must be between 0 and 5"),
	}
}

func requiredID(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if id, _ := value.(uuid.UUID); id == uuid.Nil {
			return errors.New(message)
		}
		return nil
	})
}

// CreateReviewRequest is the body of POST /reviews. On nested routes the
// tour comes from the path and the user is always the caller.
type CreateReviewRequest struct {
	Review string    `json:"review"`
	Rating *float64  `json:"rating"`
	TourID uuid.UUID `json:"tour"`
	UserID uuid.UUID `json:"user"`
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Review, validation.Required.Error("Review can not be empty!")),
		validation.Field(&r.Rating, ratingRules()...),
		validation.Field(&r.TourID, requiredID("Review must belong to a tour.")),
		validation.Field(&r.UserID, requiredID("Review must belong to a user.")),
	)
}

func (r CreateReviewRequest) ToReview() *Review {
	rv := &Review{
		Review: strings.TrimSpace(r.Review),
		TourID: r.TourID,
		UserID: r.UserID,
	}
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	return rv
}

// UpdateReviewRequest only carries the editable fields; tour and author
// never change.
type UpdateReviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
}

func (r UpdateReviewRequest) Apply(rv *Review) {
	if r.Review != nil {
		rv.Review = strings.TrimSpace(*r.Review)
	}
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
}

func (rv Review) Validate() error {
	return validation.ValidateStruct(&rv,
		validation.Field(&rv.Review, validation.Required.Error("Review can not be empty!")),
		validation.Field(&rv.Rating, ratingRules()...),
	)
}

// ListSchema exposes the review fields usable in list queries.
var ListSchema = query.Schema{
	IDField:     "id",
	DefaultSort: []query.SortKey{{Field: "createdAt", Desc: true}},
	Order:       []string{"id", "review", "rating", "createdAt", "tour", "user"},
	Fields: map[string]query.Field{
		"id":        {Column: "id", Kind: query.KindUUID},
		"review":    {Column: "review"},
		"rating":    {Column: "rating", Kind: query.KindNumber, Multi: true},
		"createdAt": {Column: "created_at", Kind: query.KindTime},
		"tour":      {Column: "tour_id", Kind: query.KindUUID},
		"user":      {Column: "user_id", Kind: query.KindUUID},
	},
}
