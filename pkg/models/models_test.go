package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPricePointValid(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, PricePoint{Date: date, Close: decimal.NewFromFloat(101.5)}.Valid())
	assert.False(t, PricePoint{Close: decimal.NewFromFloat(101.5)}.Valid())
	assert.False(t, PricePoint{Date: date, Close: decimal.Zero}.Valid())
	assert.False(t, PricePoint{Date: date, Close: decimal.NewFromFloat(-1)}.Valid())
}

func TestPositionValidate(t *testing.T) {
	assert.NoError(t, Position{Symbol: "AAPL", Weight: decimal.NewFromFloat(0.5)}.Validate())

	// zero weight is a legal placeholder position
	assert.NoError(t, Position{Symbol: "AAPL", Weight: decimal.Zero}.Validate())

	assert.Error(t, Position{Weight: decimal.NewFromFloat(0.5)}.Validate())
	assert.Error(t, Position{Symbol: "AAPL", Weight: decimal.NewFromFloat(-0.1)}.Validate())
}

func TestSortPrices(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	prices := []PricePoint{
		{Date: d3, Close: decimal.NewFromInt(103)},
		{Date: d1, Close: decimal.NewFromInt(101)},
		{Date: d2, Close: decimal.NewFromInt(102)},
	}
	SortPrices(prices)

	assert.Equal(t, d1, prices[0].Date)
	assert.Equal(t, d2, prices[1].Date)
	assert.Equal(t, d3, prices[2].Date)
}
