package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tours-backend/internal/shared/query"
)

// Repository is the data access contract for users.
// Every read excludes inactive (soft-deleted) users.
type Repository interface {
	// Create returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, u *User) error

	// FindByID returns ErrUserNotFound when missing or inactive.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	FindProfiles(ctx context.Context, ids []uuid.UUID) ([]Profile, error)

	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]User, error)

	// Update persists profile fields (name, email, photo, role, active).
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash *string, expires *time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpiredResetTokens clears reset tokens that expired before cutoff.
	DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListSchema exposes the user fields usable in list queries.
var ListSchema = query.Schema{
	IDField:     "id",
	DefaultSort: []query.SortKey{{Field: "createdAt", Desc: true}},
	Order:       []string{"id", "name", "email", "photo", "role", "createdAt"},
	Fields: map[string]query.Field{
		"id":        {Column: "id", Kind: query.KindUUID},
		"name":      {Column: "name"},
		"email":     {Column: "email"},
		"photo":     {Column: "photo"},
		"role":      {Column: "role", Multi: true},
		"createdAt": {Column: "created_at", Kind: query.KindTime},
	},
}
