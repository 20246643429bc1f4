package user

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const minPasswordLength = 8

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Please provide a password"),
		validation.RuneLength(minPasswordLength, 0).Error("Password must have at least 8 characters"),
	}
}

func sameAs(password string) validation.Rule {
	return validation.By(func(value interface{}) error {
		confirm, _ := value.(string)
		if confirm != password {
			return errors.New("Passwords are not the same!")
		}
		return nil
	})
}

func roleValues() []interface{} {
	out := make([]interface{}, 0, len(AllRoles()))
	for _, r := range AllRoles() {
		out = append(out, string(r))
	}
	return out
}

// NormalizeEmail lowercases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ========================================
// AUTH DTOs
// ========================================

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Role            string `json:"role"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Please tell us your name!")),
		validation.Field(&r.Email,
			validation.Required.Error("Please provide your email"),
			is.EmailFormat.Error("Please provide a valid email"),
		),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.PasswordConfirm,
			validation.Required.Error("Please confirm your password"),
			sameAs(r.Password),
		),
		validation.Field(&r.Role, validation.In(roleValues()...).Error("Role is either: user, guide, lead-guide, or admin")),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Please provide your email")),
	)
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.PasswordConfirm,
			validation.Required.Error("Please confirm your password"),
			sameAs(r.Password),
		),
	)
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PasswordCurrent, validation.Required.Error("Please provide your current password")),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.PasswordConfirm,
			validation.Required.Error("Please confirm your password"),
			sameAs(r.Password),
		),
	)
}

// ========================================
// PROFILE DTOs
// ========================================

// UpdateMeRequest only carries the fields a user may change on their own
// account. Password fields are read so the request can be refused.
type UpdateMeRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Photo           *string `json:"photo"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

func (r UpdateMeRequest) TouchesPassword() bool {
	return r.Password != nil || r.PasswordConfirm != nil
}

// UpdateUserRequest is the admin update. Passwords never change here.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Photo  *string `json:"photo"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// CreateUserRequest exists so users fit the generic CRUD handlers;
// accounts are only created through signup.
type CreateUserRequest struct{}

func (CreateUserRequest) Validate() error { return nil }

// Apply merges the patch onto u.
func (r UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		u.Email = NormalizeEmail(*r.Email)
	}
	if r.Photo != nil {
		u.Photo = *r.Photo
	}
	if r.Role != nil {
		u.Role = Role(*r.Role)
	}
	if r.Active != nil {
		u.Active = *r.Active
	}
}

// Validate checks the stored form of a user after a patch was applied.
func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required.Error("Please tell us your name!")),
		validation.Field(&u.Email,
			validation.Required.Error("Please provide your email"),
			is.EmailFormat.Error("Please provide a valid email"),
		),
		validation.Field(&u.Role, validation.By(func(value interface{}) error {
			if r, _ := value.(Role); !r.IsValid() {
				return ErrInvalidRole
			}
			return nil
		})),
	)
}
