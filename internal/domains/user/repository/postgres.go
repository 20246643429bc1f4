package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/infrastructure/database"
	"tours-backend/internal/shared/query"
	"tours-backend/pkg/logger"
)

const userColumns = `id, name, email, photo, role, password, password_changed_at,
	password_reset_token, password_reset_expires, active, created_at`

type postgresRepository struct {
	pool *pgxpool.Pool
	sql  goqu.DialectWrapper
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{
		pool: pool,
		sql:  goqu.Dialect("postgres"),
	}
}

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, u *user.User) error {
	q := `
		INSERT INTO users (name, email, photo, role, password, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, q,
		u.Name, u.Email, u.Photo, u.Role, u.PasswordHash, u.Active,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND active`
	return r.findOne(ctx, q, id)
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND active`
	return r.findOne(ctx, q, user.NormalizeEmail(email))
}

func (r *postgresRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
		WHERE password_reset_token = $1 AND password_reset_expires > $2 AND active`
	return r.findOne(ctx, q, tokenHash, now)
}

func (r *postgresRepository) findOne(ctx context.Context, q string, args ...interface{}) (*user.User, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) FindProfiles(ctx context.Context, ids []uuid.UUID) ([]user.Profile, error) {
	if len(ids) == 0 {
		return []user.Profile{}, nil
	}

	q := `SELECT id, name, email, photo, role FROM users WHERE id = ANY($1) AND active`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, pgx.RowToStructByName[user.Profile])
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	return profiles, nil
}

func (r *postgresRepository) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]user.User, error) {
	base := r.sql.From("users").Where(goqu.C("active").IsTrue())

	q, args, err := query.NewBuilder(base, opts, user.ListSchema).Scoped(scope).Apply().ToSQL()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[user.User])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	logger.Debug("users listed", map[string]interface{}{
		"took_ms": time.Since(start).Milliseconds(),
		"count":   len(users),
	})
	return users, nil
}

// ========================================
// MUTATIONS
// ========================================

func (r *postgresRepository) Update(ctx context.Context, u *user.User) error {
	q := `
		UPDATE users
		SET name = $2, email = $3, photo = $4, role = $5, active = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, q, u.ID, u.Name, u.Email, u.Photo, u.Role, u.Active)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return user.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePassword also clears any pending reset token.
func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	q := `
		UPDATE users
		SET password = $2, password_changed_at = $3,
		    password_reset_token = NULL, password_reset_expires = NULL
		WHERE id = $1 AND active
	`

	tag, err := r.pool.Exec(ctx, q, id, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash *string, expires *time.Time) error {
	q := `UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, id, tokenHash, expires)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET active = FALSE WHERE id = $1 AND active`, id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	q := `
		UPDATE users
		SET password_reset_token = NULL, password_reset_expires = NULL
		WHERE password_reset_expires IS NOT NULL AND password_reset_expires < $1
	`

	tag, err := r.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
