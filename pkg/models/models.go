// Package models defines the shared value objects exchanged between the
// price-history provider and the risk computation core.
package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents one daily closing price for a symbol
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Valid reports whether the point carries a usable positive close.
func (p PricePoint) Valid() bool {
	return !p.Date.IsZero() && p.Close.IsPositive()
}

// Position represents a weighted portfolio holding
type Position struct {
	Symbol string          `json:"symbol"`
	Weight decimal.Decimal `json:"weight"`
}

// Validate checks that the position identifies a symbol and carries a
// non-negative weight. Weights across a portfolio are expected to sum to
// roughly one but that is not enforced here.
func (p Position) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("models: position has empty symbol")
	}
	if p.Weight.IsNegative() {
		return fmt.Errorf("models: position %s has negative weight %s", p.Symbol, p.Weight)
	}
	return nil
}

// SortPrices orders a price series ascending by date in place.
func SortPrices(prices []PricePoint) {
	sort.Slice(prices, func(i, j int) bool { return prices[i].Date.Before(prices[j].Date) })
}
