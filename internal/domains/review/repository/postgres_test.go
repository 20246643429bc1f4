package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWritesReadBackStoredRating(t *testing.T) {
	assert.Contains(t, insertReviewSQL, `RETURNING id, created_at, rating`)
	assert.Contains(t, updateReviewSQL, `RETURNING rating`)
}
