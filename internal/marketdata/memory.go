package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aidin1998/riskcore/pkg/models"
)

// MemoryProvider is an in-memory PriceProvider keyed by symbol. It backs the
// test suite and lets embedders preload fixture data without a real store.
type MemoryProvider struct {
	mu     sync.RWMutex
	prices map[string][]models.PricePoint
	now    func() time.Time
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		prices: make(map[string][]models.PricePoint),
		now:    time.Now,
	}
}

// SetSeries replaces the history for a symbol. The series is copied and
// sorted ascending by date; invalid points are dropped.
func (m *MemoryProvider) SetSeries(symbol string, prices []models.PricePoint) {
	clean := make([]models.PricePoint, 0, len(prices))
	for _, p := range prices {
		if p.Valid() {
			clean = append(clean, p)
		}
	}
	models.SortPrices(clean)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = clean
}

// SetClock overrides the provider's notion of "now" for lookback queries.
func (m *MemoryProvider) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// PricesSince returns the closes dated within the trailing number of
// calendar days.
func (m *MemoryProvider) PricesSince(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("marketdata: lookback days must be positive, got %d", days)
	}

	m.mu.RLock()
	series, ok := m.prices[symbol]
	now := m.now()
	m.mu.RUnlock()
	if !ok || len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	cutoff := now.AddDate(0, 0, -days)
	out := make([]models.PricePoint, 0, len(series))
	for _, p := range series {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s within %d days", ErrNoData, symbol, days)
	}
	return out, nil
}

// PriceHistory returns a copy of the full history for a symbol.
func (m *MemoryProvider) PriceHistory(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	series, ok := m.prices[symbol]
	m.mu.RUnlock()
	if !ok || len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	out := make([]models.PricePoint, len(series))
	copy(out, series)
	return out, nil
}
