// Package marketdata defines the price-history collaborator consumed by the
// risk core. The store itself (database, cache, remote API) lives outside
// this module; implementations hand the core already-materialized series.
package marketdata

import (
	"context"
	"errors"

	"github.com/Aidin1998/riskcore/pkg/models"
)

// ErrNoData indicates the provider holds no usable history for a symbol.
var ErrNoData = errors.New("marketdata: no price history for symbol")

// PriceProvider supplies ordered daily price history for a symbol.
type PriceProvider interface {
	// PricesSince returns the closes for the trailing number of calendar
	// days, ordered ascending by date.
	PricesSince(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)

	// PriceHistory returns the full available close history for a symbol,
	// ordered ascending by date.
	PriceHistory(ctx context.Context, symbol string) ([]models.PricePoint, error)
}
