package model

import (
	"errors"

	"tours-backend/internal/shared/apperror"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("user already reviewed this tour")
	ErrTourMissing     = errors.New("reviewed tour does not exist")
)

// MapError converts repository errors into client-facing ones.
func MapError(err error) error {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		return apperror.NotFound("No review found with that ID")
	case errors.Is(err, ErrAlreadyReviewed):
		return apperror.Duplicate("You have already reviewed this tour.")
	case errors.Is(err, ErrTourMissing):
		return apperror.NotFound("No tour found with that ID")
	default:
		return err
	}
}
