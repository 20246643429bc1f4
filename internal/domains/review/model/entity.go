package model

import (
	"time"

	"github.com/google/uuid"

	"tours-backend/internal/domains/user"
)

// Review is one user's rating of one tour. A user reviews a tour at most once.
type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Review    string    `db:"review" json:"review"`
	Rating    float64   `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	TourID    uuid.UUID `db:"tour_id" json:"tour"`
	UserID    uuid.UUID `db:"user_id" json:"-"`

	// Populated on reads.
	User *user.Profile `db:"-" json:"user,omitempty"`
}

// Author is the part of the author's profile shown next to a review.
func Author(p user.Profile) *user.Profile {
	return &user.Profile{ID: p.ID, Name: p.Name, Photo: p.Photo}
}
