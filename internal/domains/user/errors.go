package user

import (
	"errors"

	"tours-backend/internal/shared/apperror"
)

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid user role")
)

// Client-facing errors, returned as-is by the services.
var (
	ErrMissingCredentials = apperror.BadRequest("Please provide email and password!")
	ErrInvalidCredentials = apperror.Unauthorized("Incorrect email or password")
	ErrNotLoggedIn        = apperror.Unauthorized("You are not logged in! Please log in to get access.")
	ErrUserGone           = apperror.Unauthorized("The user belonging to this token does no longer exist.")
	ErrPasswordChanged    = apperror.Unauthorized("User recently changed password! Please log in again.")
	ErrWrongPassword      = apperror.Unauthorized("Your current password is incorrect")
	ErrNoUserWithEmail    = apperror.NotFound("There is no user with that email address.")
	ErrNotPasswordRoute   = apperror.BadRequest("This route is not for password updates. Please use /updateMyPassword.")
	ErrUseSignup          = apperror.BadRequest("This route is not defined! Please use /signup instead")
	ErrDuplicateEmail     = apperror.Duplicate("Duplicate field value: email. Please use another value!")
)

// MapError converts repository errors into client-facing ones.
func MapError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return apperror.NotFound("No user found with that ID")
	case errors.Is(err, ErrEmailAlreadyExists):
		return ErrDuplicateEmail
	default:
		return err
	}
}
