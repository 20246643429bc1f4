package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTour() *Tour {
	return CreateTourRequest{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   DifficultyEasy,
		Price:        decimal.NewFromInt(397),
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}.ToTour()
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

func TestValidTour(t *testing.T) {
	assert.NoError(t, validTour().Validate())
}

func TestPriceMustFitStoredPrecision(t *testing.T) {
	tour := validTour()
	tour.Price = decimal.RequireFromString("99999999.99")
	assert.NoError(t, tour.Validate())

	for _, raw := range []string{"100000000", "99999999.999", "1e12"} {
		tour.Price = decimal.RequireFromString(raw)
		errs := fieldErrors(t, tour.Validate())
		assert.Contains(t, errs, "price", raw)
	}
}

func TestDiscountComparedAtStoredScale(t *testing.T) {
	tour := validTour()
	tour.Price = decimal.RequireFromString("10.001")

	discount := decimal.RequireFromString("10.004")
	tour.PriceDiscount = &discount
	errs := fieldErrors(t, tour.Validate())
	assert.Contains(t, errs, "priceDiscount")

	discount = decimal.RequireFromString("9.99")
	tour.PriceDiscount = &discount
	assert.NoError(t, tour.Validate())
}
