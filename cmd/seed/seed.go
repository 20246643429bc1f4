package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	reviewmodel "tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/utils"
	"tours-backend/pkg/database"
)

//go:embed data/*.json
var dataFS embed.FS

type seedUser struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
	Photo    string    `json:"photo"`
	Password string    `json:"password"`
}

type seedTour struct {
	ID uuid.UUID `json:"id"`
	model.CreateTourRequest
}

type dataset struct {
	users   []seedUser
	tours   []seedTour
	reviews []reviewmodel.CreateReviewRequest
}

// load reads the embedded fixtures and checks them the way the API would,
// plus the references between them.
func load() (*dataset, error) {
	ds := &dataset{}
	for name, dst := range map[string]interface{}{
		"data/users.json":   &ds.users,
		"data/tours.json":   &ds.tours,
		"data/reviews.json": &ds.reviews,
	} {
		raw, err := dataFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	roles := make(map[uuid.UUID]user.Role, len(ds.users))
	for _, u := range ds.users {
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("user %s: %w", u.Email, user.ErrInvalidRole)
		}
		roles[u.ID] = u.Role
	}

	tours := make(map[uuid.UUID]bool, len(ds.tours))
	for _, t := range ds.tours {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tour %q: %w", t.Name, err)
		}
		for _, g := range t.Guides {
			if !roles[g].In(user.RoleGuide, user.RoleLeadGuide) {
				return nil, fmt.Errorf("tour %q: guide %s is not a guide", t.Name, g)
			}
		}
		tours[t.ID] = true
	}

	for _, r := range ds.reviews {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("review by %s: %w", r.UserID, err)
		}
		if !tours[r.TourID] {
			return nil, fmt.Errorf("review by %s: unknown tour %s", r.UserID, r.TourID)
		}
		if _, ok := roles[r.UserID]; !ok {
			return nil, fmt.Errorf("review on %s: unknown user %s", r.TourID, r.UserID)
		}
	}
	return ds, nil
}

// importData inserts everything in one transaction and then recomputes the
// rating aggregates of every tour.
func importData(ctx context.Context, pool *pgxpool.Pool, ds *dataset, cost int) error {
	return database.WithTransaction(ctx, pool, func(tx pgx.Tx) error {
		for _, u := range ds.users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, photo, role, password)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				u.ID, u.Name, u.Email, u.Photo, u.Role, string(hash),
			); err != nil {
				return fmt.Errorf("insert user %s: %w", u.Email, err)
			}
		}

		for _, st := range ds.tours {
			t := st.ToTour()
			if _, err := tx.Exec(ctx, `
				INSERT INTO tours (
					id, name, slug, duration, max_group_size, difficulty, price, price_discount,
					summary, description, image_cover, images, start_dates, secret_tour,
					start_location, locations, guides
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
				st.ID, t.Name, utils.GenerateSlug(t.Name), t.Duration, t.MaxGroupSize, t.Difficulty,
				t.Price, t.PriceDiscount, t.Summary, t.Description, t.ImageCover, t.Images,
				t.StartDates, t.SecretTour, t.StartLocation, t.Locations, t.GuideIDs,
			); err != nil {
				return fmt.Errorf("insert tour %q: %w", t.Name, err)
			}
		}

		for _, r := range ds.reviews {
			rv := r.ToReview()
			if _, err := tx.Exec(ctx, `
				INSERT INTO reviews (review, rating, tour_id, user_id)
				VALUES ($1, $2, $3, $4)`,
				rv.Review, rv.Rating, rv.TourID, rv.UserID,
			); err != nil {
				return fmt.Errorf("insert review: %w", err)
			}
		}

		_, err := tx.Exec(ctx, `
			UPDATE tours t
			SET ratings_quantity = s.n,
			    ratings_average  = CASE WHEN s.n = 0 THEN $1 ELSE round(s.avg, 1) END
			FROM (
				SELECT t2.id, count(r.id) AS n, avg(r.rating) AS avg
				FROM tours t2 LEFT JOIN reviews r ON r.tour_id = t2.id
				GROUP BY t2.id
			) s
			WHERE t.id = s.id`, model.DefaultRatingsAverage)
		return err
	})
}

// deleteData empties users, tours and reviews in a single TRUNCATE.
func deleteData(ctx context.Context, pool *pgxpool.Pool) error {
	return database.WithTransaction(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE reviews, tours, users`)
		return err
	})
}
