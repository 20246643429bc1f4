package model

import (
	"errors"

	"tours-backend/internal/shared/apperror"
)

// ErrTourNotFound is returned for missing and secret tours alike.
var ErrTourNotFound = errors.New("tour not found")

var (
	ErrBadLatLng = apperror.BadRequest("Please provide latitude and longitude in the format lat,lng.")
	ErrBadYear   = apperror.BadRequest("Please provide a valid year.")
	ErrBadRadius = apperror.BadRequest("Please provide a positive distance.")
)

// MapError converts repository errors into client-facing ones.
func MapError(err error) error {
	switch {
	case errors.Is(err, ErrTourNotFound):
		return apperror.NotFound("No tour found with that ID")
	default:
		return err
	}
}
