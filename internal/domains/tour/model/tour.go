package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	reviewmodel "tours-backend/internal/domains/review/model"
	"tours-backend/internal/domains/user"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

const (
	DefaultRatingsAverage = 4.5
	PointType             = "Point"
)

// Prices are stored as NUMERIC(10,2).
const PriceScale = 2

var PriceCeiling = decimal.New(1, 8)

// Location is a GeoJSON point. Coordinates are [longitude, latitude].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	// Day of the tour on which the stop is visited. Waypoints only.
	Day int `json:"day,omitempty"`
}

func (l Location) Lng() float64 { return l.Coordinates[0] }
func (l Location) Lat() float64 { return l.Coordinates[1] }

// Tour maps onto the tours table. start_location and locations are JSONB.
type Tour struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Slug            string           `db:"slug" json:"slug"`
	Duration        int              `db:"duration" json:"duration"`
	MaxGroupSize    int              `db:"max_group_size" json:"maxGroupSize"`
	Difficulty      Difficulty       `db:"difficulty" json:"difficulty"`
	RatingsAverage  float64          `db:"ratings_average" json:"ratingsAverage"`
	RatingsQuantity int              `db:"ratings_quantity" json:"ratingsQuantity"`
	Price           decimal.Decimal  `db:"price" json:"price"`
	PriceDiscount   *decimal.Decimal `db:"price_discount" json:"priceDiscount,omitempty"`
	Summary         string           `db:"summary" json:"summary"`
	Description     string           `db:"description" json:"description"`
	ImageCover      string           `db:"image_cover" json:"imageCover"`
	Images          []string         `db:"images" json:"images"`
	StartDates      []time.Time      `db:"start_dates" json:"startDates"`
	SecretTour      bool             `db:"secret_tour" json:"secretTour"`
	StartLocation   *Location        `db:"start_location" json:"startLocation,omitempty"`
	Locations       []Location       `db:"locations" json:"locations"`
	GuideIDs        []uuid.UUID      `db:"guides" json:"-"`

	// Only loaded when explicitly selected.
	CreatedAt *time.Time `db:"created_at" json:"createdAt,omitempty"`

	// Derived and populated fields.
	DurationWeeks float64              `db:"-" json:"durationWeeks"`
	Guides        []user.Profile       `db:"-" json:"guides"`
	Reviews       []reviewmodel.Review `db:"-" json:"reviews,omitempty"`
}

// Derive fills the fields computed from stored ones.
func (t *Tour) Derive() {
	t.DurationWeeks = float64(t.Duration) / 7
}

// DifficultyStats is one row of the tour-stats aggregate.
type DifficultyStats struct {
	Difficulty       string   `db:"difficulty" json:"difficulty"`
	NumTours         int      `db:"num_tours" json:"numTours"`
	NumRatings       int      `db:"num_ratings" json:"numRatings"`
	AvgRating        float64  `db:"avg_rating" json:"avgRating"`
	AvgPrice         float64  `db:"avg_price" json:"avgPrice"`
	MinPrice         float64  `db:"min_price" json:"minPrice"`
	MaxPrice         float64  `db:"max_price" json:"maxPrice"`
	AvgPriceDiscount *float64 `db:"avg_price_discount" json:"avgPriceDiscount"`
}

// MonthlyPlan lists the tours starting in one month of a year.
type MonthlyPlan struct {
	Month         int      `db:"month" json:"month"`
	NumTourStarts int      `db:"num_tour_starts" json:"numTourStarts"`
	Tours         []string `db:"tours" json:"tours"`
}

// TourDistance is the distance from a point to a tour's start location.
type TourDistance struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Distance float64   `db:"distance" json:"distance"`
}
