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

	"tours-backend/internal/domains/review/model"
	"tours-backend/internal/infrastructure/database"
	"tours-backend/internal/shared/query"
	"tours-backend/pkg/logger"
)

const reviewColumns = `id, review, rating, created_at, tour_id, user_id`

type postgresRepository struct {
	pool *pgxpool.Pool
	sql  goqu.DialectWrapper
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
		sql:  goqu.Dialect("postgres"),
	}
}

// rating is NUMERIC(2,1): writes read back the rounded value.
const insertReviewSQL = `
	INSERT INTO reviews (review, rating, tour_id, user_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, rating
`

const updateReviewSQL = `UPDATE reviews SET review = $2, rating = $3 WHERE id = $1 RETURNING rating`

func (r *postgresRepository) Create(ctx context.Context, rv *model.Review) error {
	err := r.pool.QueryRow(ctx, insertReviewSQL, rv.Review, rv.Rating, rv.TourID, rv.UserID).
		Scan(&rv.ID, &rv.CreatedAt, &rv.Rating)
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err, "reviews_tour_user_key"):
		return model.ErrAlreadyReviewed
	case database.IsForeignKeyViolation(err, "reviews_tour_id_fkey"):
		return model.ErrTourMissing
	default:
		return fmt.Errorf("insert review: %w", err)
	}
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("query review: %w", err)
	}

	rv, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Review])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return rv, nil
}

func (r *postgresRepository) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Review, error) {
	q, args, err := query.NewBuilder(r.sql.From("reviews"), opts, model.ListSchema).
		Scoped(scope).Apply().ToSQL()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, q, args...)
}

func (r *postgresRepository) ListByTour(ctx context.Context, tourID uuid.UUID) ([]model.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE tour_id = $1 ORDER BY created_at DESC, id`
	return r.collect(ctx, q, tourID)
}

func (r *postgresRepository) collect(ctx context.Context, q string, args ...interface{}) ([]model.Review, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Review])
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}

	logger.Debug("reviews listed", map[string]interface{}{
		"took_ms": time.Since(start).Milliseconds(),
		"count":   len(reviews),
	})
	return reviews, nil
}

func (r *postgresRepository) Update(ctx context.Context, rv *model.Review) error {
	err := r.pool.QueryRow(ctx, updateReviewSQL, rv.ID, rv.Review, rv.Rating).Scan(&rv.Rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}
