package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"tours-backend/pkg/jwt"
)

const genericMessage = "Something went very wrong!"

// Key (email)=(test@example.com) already exists.
var duplicateDetail = regexp.MustCompile(`=\((.*)\)`)

// Normalize converts any error produced below the handlers into an AppError.
// Unknown errors come back non-operational.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return Validation(validationMessage(verrs)).WithErr(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			value := pgErr.Detail
			if m := duplicateDetail.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
				value = m[1]
			}
			return Duplicate(fmt.Sprintf("Duplicate field value: %s. Please use another value!", value)).WithErr(err)
		case "22P02":
			return New(KindInvalidID, http.StatusBadRequest, "Invalid input syntax.").WithErr(err)
		case "22003":
			return Validation("Invalid input data. Numeric value out of range.").WithErr(err)
		case "23514":
			return Validation(fmt.Sprintf("Invalid input data. %s", pgErr.ConstraintName)).WithErr(err)
		}
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return ExpiredToken().WithErr(err)
	}
	if isTokenError(err) {
		return InvalidToken().WithErr(err)
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return New(KindPayloadTooLarge, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds the %d byte limit", maxBytes.Limit)).WithErr(err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return BadRequest("Invalid JSON body: " + err.Error()).WithErr(err)
	}

	return &AppError{
		Kind:        KindInternal,
		StatusCode:  http.StatusInternalServerError,
		Message:     genericMessage,
		Operational: false,
		Err:         err,
	}
}

func validationMessage(verrs validation.Errors) string {
	msgs := make([]string, 0, len(verrs))
	for field, fieldErr := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v", field, fieldErr))
	}
	// map iteration order is random
	sort.Strings(msgs)
	return "Invalid input data. " + strings.Join(msgs, ". ")
}

func isTokenError(err error) bool {
	return errors.Is(err, jwt.ErrInvalidToken) || jwt.IsVerificationError(err)
}
