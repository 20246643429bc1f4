package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tours-backend/internal/shared/query"
)

// CreateTourRequest is the body of POST /tours. Ratings are not accepted:
// they are recomputed from reviews.
type CreateTourRequest struct {
	Name          string           `json:"name"`
	Duration      int              `json:"duration"`
	MaxGroupSize  int              `json:"maxGroupSize"`
	Difficulty    Difficulty       `json:"difficulty"`
	Price         decimal.Decimal  `json:"price"`
	PriceDiscount *decimal.Decimal `json:"priceDiscount"`
	Summary       string           `json:"summary"`
	Description   string           `json:"description"`
	ImageCover    string           `json:"imageCover"`
	Images        []string         `json:"images"`
	StartDates    []time.Time      `json:"startDates"`
	SecretTour    bool             `json:"secretTour"`
	StartLocation *Location        `json:"startLocation"`
	Locations     []Location       `json:"locations"`
	Guides        []uuid.UUID      `json:"guides"`
}

func (r CreateTourRequest) Validate() error {
	return r.ToTour().Validate()
}

// ToTour applies defaults and trimming. Slug and derived fields are left to
// the service.
func (r CreateTourRequest) ToTour() *Tour {
	t := &Tour{
		Name:           strings.TrimSpace(r.Name),
		Duration:       r.Duration,
		MaxGroupSize:   r.MaxGroupSize,
		Difficulty:     r.Difficulty,
		RatingsAverage: DefaultRatingsAverage,
		Price:          r.Price,
		PriceDiscount:  r.PriceDiscount,
		Summary:        strings.TrimSpace(r.Summary),
		Description:    strings.TrimSpace(r.Description),
		ImageCover:     r.ImageCover,
		Images:         nonNil(r.Images),
		StartDates:     nonNil(r.StartDates),
		SecretTour:     r.SecretTour,
		StartLocation:  r.StartLocation,
		Locations:      nonNil(r.Locations),
		GuideIDs:       nonNil(r.Guides),
	}
	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = PointType
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = PointType
		}
	}
	return t
}

// UpdateTourRequest is a partial update; nil fields are left untouched.
type UpdateTourRequest struct {
	Name          *string          `json:"name"`
	Duration      *int             `json:"duration"`
	MaxGroupSize  *int             `json:"maxGroupSize"`
	Difficulty    *Difficulty      `json:"difficulty"`
	Price         *decimal.Decimal `json:"price"`
	PriceDiscount *decimal.Decimal `json:"priceDiscount"`
	Summary       *string          `json:"summary"`
	Description   *string          `json:"description"`
	ImageCover    *string          `json:"imageCover"`
	Images        []string         `json:"images"`
	StartDates    []time.Time      `json:"startDates"`
	SecretTour    *bool            `json:"secretTour"`
	StartLocation *Location        `json:"startLocation"`
	Locations     []Location       `json:"locations"`
	Guides        []uuid.UUID      `json:"guides"`
}

// Apply merges the patch onto t and reports whether the name changed.
func (r UpdateTourRequest) Apply(t *Tour) (renamed bool) {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		renamed = name != t.Name
		t.Name = name
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
	}
	if r.MaxGroupSize != nil {
		t.MaxGroupSize = *r.MaxGroupSize
	}
	if r.Difficulty != nil {
		t.Difficulty = *r.Difficulty
	}
	if r.Price != nil {
		t.Price = *r.Price
	}
	if r.PriceDiscount != nil {
		t.PriceDiscount = r.PriceDiscount
	}
	if r.Summary != nil {
		t.Summary = strings.TrimSpace(*r.Summary)
	}
	if r.Description != nil {
		t.Description = strings.TrimSpace(*r.Description)
	}
	if r.ImageCover != nil {
		t.ImageCover = *r.ImageCover
	}
	if r.Images != nil {
		t.Images = r.Images
	}
	if r.StartDates != nil {
		t.StartDates = r.StartDates
	}
	if r.SecretTour != nil {
		t.SecretTour = *r.SecretTour
	}
	if r.StartLocation != nil {
		t.StartLocation = r.StartLocation
	}
	if r.Locations != nil {
		t.Locations = r.Locations
	}
	if r.Guides != nil {
		t.GuideIDs = r.Guides
	}
	return renamed
}

// Validate checks a complete tour, after defaults or a patch were applied.
func (t Tour) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name,
			validation.Required.Error("A tour must have a name"),
			validation.RuneLength(10, 0).Error("A tour name must have more than or equal to 10 characters"),
			validation.RuneLength(0, 40).Error("A tour name must have less than or equal to 40 characters"),
		),
		validation.Field(&t.Duration,
			validation.Required.Error("A tour must have a duration"),
			validation.Min(1).Error("Duration must be positive"),
		),
		validation.Field(&t.MaxGroupSize,
			validation.Required.Error("A tour must have a max group size"),
			validation.Min(1).Error("Max group size must be positive"),
		),
		validation.Field(&t.Difficulty,
			validation.Required.Error("A tour must have a difficulty"),
			validation.In(DifficultyEasy, DifficultyMedium, DifficultyDifficult).
				Error("Difficulty is either: easy, medium, or difficult"),
		),
		validation.Field(&t.RatingsAverage,
			validation.Min(1.0).Error("Rating must be above 1.0"),
			validation.Max(5.0).Error("Rating must be below 5.0"),
		),
		validation.Field(&t.Price, validation.By(func(interface{}) error {
			if !t.Price.IsPositive() {
				return errors.New("A tour must have a price")
			}
			if !t.Price.Round(PriceScale).LessThan(PriceCeiling) {
				return fmt.Errorf("A tour price must be below %s", PriceCeiling.String())
			}
			return nil
		})),
		validation.Field(&t.PriceDiscount, validation.By(func(interface{}) error {
			// compared at the stored scale, where 10.004 and 10.001 are equal
			if t.PriceDiscount != nil && !t.PriceDiscount.Round(PriceScale).LessThan(t.Price.Round(PriceScale)) {
				return fmt.Errorf("Discount price (%s) should be below regular price", t.PriceDiscount.String())
			}
			return nil
		})),
		validation.Field(&t.Summary, validation.Required.Error("A tour must have a summary")),
		validation.Field(&t.ImageCover, validation.Required.Error("A tour must have a cover image")),
		validation.Field(&t.StartLocation, validation.By(func(interface{}) error {
			if t.StartLocation == nil {
				return nil
			}
			return t.StartLocation.validate()
		})),
		validation.Field(&t.Locations, validation.By(func(interface{}) error {
			for i, l := range t.Locations {
				if err := l.validate(); err != nil {
					return fmt.Errorf("location %d: %w", i, err)
				}
			}
			return nil
		})),
	)
}

func (l Location) validate() error {
	if l.Type != PointType {
		return errors.New("Location type must be Point")
	}
	if len(l.Coordinates) != 2 {
		return errors.New("Coordinates must be [longitude, latitude]")
	}
	if lng, lat := l.Coordinates[0], l.Coordinates[1]; lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return errors.New("Coordinates are out of range")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ListSchema exposes the tour fields usable in list queries. Only the
// whitelisted numeric and difficulty fields accept repeated values.
var ListSchema = query.Schema{
	IDField:     "id",
	DefaultSort: []query.SortKey{{Field: "createdAt", Desc: true}},
	Order: []string{
		"id", "name", "slug", "duration", "maxGroupSize", "difficulty",
		"ratingsAverage", "ratingsQuantity", "price", "priceDiscount",
		"summary", "description", "imageCover", "images", "startDates",
		"secretTour", "startLocation", "locations", "guides", "createdAt",
	},
	Fields: map[string]query.Field{
		"id":              {Column: "id", Kind: query.KindUUID},
		"name":            {Column: "name"},
		"slug":            {Column: "slug"},
		"duration":        {Column: "duration", Kind: query.KindInt, Multi: true},
		"maxGroupSize":    {Column: "max_group_size", Kind: query.KindInt, Multi: true},
		"difficulty":      {Column: "difficulty", Multi: true},
		"ratingsAverage":  {Column: "ratings_average", Kind: query.KindNumber, Multi: true},
		"ratingsQuantity": {Column: "ratings_quantity", Kind: query.KindInt, Multi: true},
		"price":           {Column: "price", Kind: query.KindNumber, Multi: true},
		"priceDiscount":   {Column: "price_discount", Kind: query.KindNumber},
		"summary":         {Column: "summary"},
		"description":     {Column: "description"},
		"imageCover":      {Column: "image_cover"},
		"images":          {Column: "images", ProjectOnly: true},
		"startDates":      {Column: "start_dates", ProjectOnly: true},
		"secretTour":      {Column: "secret_tour", Kind: query.KindBool},
		"startLocation":   {Column: "start_location", ProjectOnly: true},
		"locations":       {Column: "locations", ProjectOnly: true},
		"guides":          {Column: "guides", ProjectOnly: true},
		"createdAt":       {Column: "created_at", Kind: query.KindTime, Hidden: true},
	},
}
