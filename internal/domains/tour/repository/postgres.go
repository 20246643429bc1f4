package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/shared/query"
	"tours-backend/pkg/logger"
)

const tourColumns = `id, name, slug, duration, max_group_size, difficulty,
	ratings_average, ratings_quantity, price, price_discount, summary, description,
	image_cover, images, start_dates, secret_tour, start_location, locations, guides`

// start_location is GeoJSON: coordinates are [lng, lat].
const (
	startLat = `(start_location->'coordinates'->>1)::float8`
	startLng = `(start_location->'coordinates'->>0)::float8`
)

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

// ========================================
// BASIC CRUD OPERATIONS
// ========================================

// Create and Update read back the stored numeric columns: postgres rounds
// prices to cents and ratings to one decimal.
const insertTourSQL = `
	INSERT INTO tours (
		name, slug, duration, max_group_size, difficulty, ratings_average,
		ratings_quantity, price, price_discount, summary, description, image_cover,
		images, start_dates, secret_tour, start_location, locations, guides
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING id, price, price_discount, ratings_average
`

func (r *postgresRepository) Create(ctx context.Context, t *model.Tour) error {
	err := r.pool.QueryRow(ctx, insertTourSQL,
		t.Name, t.Slug, t.Duration, t.MaxGroupSize, t.Difficulty, t.RatingsAverage,
		t.RatingsQuantity, t.Price, t.PriceDiscount, t.Summary, t.Description, t.ImageCover,
		t.Images, t.StartDates, t.SecretTour, t.StartLocation, t.Locations, t.GuideIDs,
	).Scan(&t.ID, &t.Price, &t.PriceDiscount, &t.RatingsAverage)
	if err != nil {
		// duplicate names surface as pg 23505 and are normalized upstream
		return fmt.Errorf("insert tour: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tour, error) {
	q := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1 AND NOT secret_tour`
	return r.findOne(ctx, q, id)
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	q := `SELECT ` + tourColumns + ` FROM tours WHERE slug = $1 AND NOT secret_tour
		ORDER BY created_at LIMIT 1`
	return r.findOne(ctx, q, slug)
}

func (r *postgresRepository) findOne(ctx context.Context, q string, args ...interface{}) (*model.Tour, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tour: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[model.Tour])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tour: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Tour, error) {
	base := r.sql.From("tours").Where(goqu.C("secret_tour").IsFalse())

	q, args, err := query.NewBuilder(base, opts, model.ListSchema).Scoped(scope).Apply().ToSQL()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, "list tours", q, args)
}

func (r *postgresRepository) collect(ctx context.Context, op, q string, args []interface{}) ([]model.Tour, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tours, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Tour])
	if err != nil {
		return nil, fmt.Errorf("scan tours: %w", err)
	}

	logger.Debug("query took", map[string]interface{}{
		"op":      op,
		"took_ms": time.Since(start).Milliseconds(),
		"count":   len(tours),
	})
	return tours, nil
}

// ========================================
// MUTATIONS
// ========================================

const updateTourSQL = `
	UPDATE tours
	SET name = $2, slug = $3, duration = $4, max_group_size = $5, difficulty = $6,
	    price = $7, price_discount = $8, summary = $9, description = $10,
	    image_cover = $11, images = $12, start_dates = $13, secret_tour = $14,
	    start_location = $15, locations = $16, guides = $17
	WHERE id = $1
	RETURNING price, price_discount
`

func (r *postgresRepository) Update(ctx context.Context, t *model.Tour) error {
	err := r.pool.QueryRow(ctx, updateTourSQL, t.ID,
		t.Name, t.Slug, t.Duration, t.MaxGroupSize, t.Difficulty,
		t.Price, t.PriceDiscount, t.Summary, t.Description,
		t.ImageCover, t.Images, t.StartDates, t.SecretTour,
		t.StartLocation, t.Locations, t.GuideIDs,
	).Scan(&t.Price, &t.PriceDiscount)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrTourNotFound
	}
	if err != nil {
		return fmt.Errorf("update tour: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTourNotFound
	}
	return nil
}

// A tour without reviews falls back to the default average.
const recalculateRatingsSQL = `
	UPDATE tours t
	SET ratings_quantity = s.n,
	    ratings_average = CASE WHEN s.n = 0 THEN $2 ELSE round(s.avg, 1) END
	FROM (SELECT count(*) AS n, avg(rating) AS avg FROM reviews WHERE tour_id = $1) s
	WHERE t.id = $1
`

func (r *postgresRepository) RecalculateRatings(ctx context.Context, tourID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, recalculateRatingsSQL, tourID, model.DefaultRatingsAverage); err != nil {
		return fmt.Errorf("recalculate ratings: %w", err)
	}
	return nil
}

// ========================================
// AGGREGATES
// ========================================

func (r *postgresRepository) Stats(ctx context.Context) ([]model.DifficultyStats, error) {
	q, args, err := statsQuery(r.sql).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("tour stats: %w", err)
	}
	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.DifficultyStats])
	if err != nil {
		return nil, fmt.Errorf("scan tour stats: %w", err)
	}
	return stats, nil
}

func statsQuery(d goqu.DialectWrapper) *goqu.SelectDataset {
	group := goqu.L("upper(difficulty)")
	return d.From("tours").
		Select(
			group.As("difficulty"),
			goqu.L("count(*)").As("num_tours"),
			goqu.L("coalesce(sum(ratings_quantity), 0)").As("num_ratings"),
			goqu.L("avg(ratings_average)::float8").As("avg_rating"),
			goqu.L("avg(price)::float8").As("avg_price"),
			goqu.L("min(price)::float8").As("min_price"),
			goqu.L("max(price)::float8").As("max_price"),
			goqu.L("avg(price_discount)::float8").As("avg_price_discount"),
		).
		Where(group.Neq("EASY")).
		GroupBy(group).
		Order(goqu.I("avg_price").Asc()).
		Prepared(true)
}

const monthlyPlanSQL = `
	SELECT extract(month FROM d.start_date)::int AS month,
	       count(*)::int AS num_tour_starts,
	       array_agg(t.name ORDER BY t.name) AS tours
	FROM tours t
	CROSS JOIN LATERAL unnest(t.start_dates) AS d(start_date)
	WHERE d.start_date >= $1 AND d.start_date < $2
	GROUP BY 1
	ORDER BY num_tour_starts DESC, month ASC
	LIMIT 12
`

func (r *postgresRepository) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := r.pool.Query(ctx, monthlyPlanSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly plan: %w", err)
	}
	plan, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.MonthlyPlan])
	if err != nil {
		return nil, fmt.Errorf("scan monthly plan: %w", err)
	}
	return plan, nil
}

// centralAngle is the haversine angle in radians between center and the
// tour's start location.
func centralAngle(center model.LatLng) exp.LiteralExpression {
	return goqu.L(
		`2 * asin(least(1, sqrt(
			power(sin(radians(`+startLat+` - ?) / 2), 2) +
			cos(radians(?)) * cos(radians(`+startLat+`)) *
			power(sin(radians(`+startLng+` - ?) / 2), 2)
		)))`,
		center.Lat, center.Lat, center.Lng,
	)
}

func located(d goqu.DialectWrapper) *goqu.SelectDataset {
	return d.From("tours").Where(
		goqu.C("start_location").IsNotNull(),
		goqu.C("secret_tour").IsFalse(),
	)
}

func withinQuery(d goqu.DialectWrapper, center model.LatLng, radius float64) *goqu.SelectDataset {
	return located(d).
		Select(goqu.L(tourColumns)).
		Where(centralAngle(center).Lte(radius)).
		Order(goqu.I("id").Asc()).
		Prepared(true)
}

func distancesQuery(d goqu.DialectWrapper, center model.LatLng, multiplier float64) *goqu.SelectDataset {
	return located(d).
		Select(
			goqu.C("id"),
			goqu.C("name"),
			goqu.L("? * ?", centralAngle(center), multiplier).As("distance"),
		).
		Order(goqu.I("distance").Asc()).
		Prepared(true)
}

func (r *postgresRepository) Within(ctx context.Context, center model.LatLng, radius float64) ([]model.Tour, error) {
	q, args, err := withinQuery(r.sql, center, radius).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build within query: %w", err)
	}
	return r.collect(ctx, "tours within", q, args)
}

func (r *postgresRepository) Distances(ctx context.Context, center model.LatLng, multiplier float64) ([]model.TourDistance, error) {
	q, args, err := distancesQuery(r.sql, center, multiplier).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distances query: %w", err)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("tour distances: %w", err)
	}
	distances, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.TourDistance])
	if err != nil {
		return nil, fmt.Errorf("scan tour distances: %w", err)
	}
	return distances, nil
}
