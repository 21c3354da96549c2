package pricebook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
)

var (
	// ErrNoPrice means no tick has been seen for the symbol.
	ErrNoPrice = errors.New("no live price")
	// ErrStalePrice means the last tick is older than the book's max age.
	ErrStalePrice = errors.New("stale live price")
)

type quote struct {
	price float64
	at    time.Time
}

// Book keeps the last traded price per symbol from the live stream.
type Book struct {
	mu     sync.RWMutex
	quotes map[string]quote
	maxAge time.Duration
	now    func() time.Time
}

var _ drepo.PriceSource = (*Book)(nil)

// New creates a book. maxAge <= 0 keeps prices forever.
func New(maxAge time.Duration) *Book {
	return &Book{quotes: make(map[string]quote), maxAge: maxAge, now: time.Now}
}

// Update records the tick's price if it is not older than the stored one.
func (b *Book) Update(_ context.Context, t *models.Tick) error {
	at := time.Unix(t.Timestamp, 0)
	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.quotes[t.Symbol]; ok && at.Before(q.at) {
		return nil
	}
	b.quotes[t.Symbol] = quote{price: t.Price, at: at}
	return nil
}

func (b *Book) LatestPrice(_ context.Context, symbol string) (float64, error) {
	b.mu.RLock()
	q, ok := b.quotes[symbol]
	b.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoPrice)
	}
	if b.maxAge > 0 && b.now().Sub(q.at) > b.maxAge {
		return 0, fmt.Errorf("%s: %w", symbol, ErrStalePrice)
	}
	return q.price, nil
}

// Fallback tries the primary source first and the secondary on any error.
type Fallback struct {
	Primary   drepo.PriceSource
	Secondary drepo.PriceSource
}

func (f Fallback) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	p, err := f.Primary.LatestPrice(ctx, symbol)
	if err == nil {
		return p, nil
	}
	p, err2 := f.Secondary.LatestPrice(ctx, symbol)
	if err2 != nil {
		return 0, fmt.Errorf("primary: %v; secondary: %w", err, err2)
	}
	return p, nil
}
