package user

import (
	"context"

	"github.com/google/uuid"

	"tours-backend/internal/shared/query"
)

// Session is what the auth flows hand back to the transport layer.
type Session struct {
	Token string
	User  *User
}

// AuthService covers the password and token lifecycle.
type AuthService interface {
	// Signup creates the account and queues a welcome mail linking accountURL.
	Signup(ctx context.Context, req SignupRequest, accountURL string) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)

	// Authenticate resolves a bearer token to an active user whose password
	// has not changed since the token was issued.
	Authenticate(ctx context.Context, token string) (*User, error)

	// ForgotPassword mails a reset link built from resetURL + "/" + token.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest, resetURL string) error
	ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) (*Session, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req UpdatePasswordRequest) (*Session, error)
}

// Service covers profile and admin operations. It doubles as the generic
// CRUD resource for /users.
type Service interface {
	Name() string
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]User, error)
	Get(ctx context.Context, id uuid.UUID, populate ...string) (*User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UpdateMe(ctx context.Context, id uuid.UUID, req UpdateMeRequest) (*User, error)
	DeleteMe(ctx context.Context, id uuid.UUID) error
}

// Notifier hands fire-and-forget mail to the background worker.
type Notifier interface {
	SendWelcome(ctx context.Context, to, name, accountURL string) error
}
