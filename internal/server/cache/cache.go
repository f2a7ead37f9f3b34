// Package cache holds the read-side cache for per-book average ratings.
// The catalog is read-heavy; recomputing AVG() on every listing page is the
// dominant query cost, so averages are cached and invalidated on write.
package cache

import (
	"context"
	"time"
)

// RatingCache stores computed average ratings keyed by book ID.
// A miss is (0, false, nil); errors are reserved for backend failures.
type RatingCache interface {
	GetAverage(ctx context.Context, bookID int64) (float64, bool, error)
	SetAverage(ctx context.Context, bookID int64, avg float64, ttl time.Duration) error
	InvalidateAverage(ctx context.Context, bookID int64) error
}

// Nop is the fallback when no cache backend is configured: every read misses
// and writes are discarded.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (*Nop) GetAverage(ctx context.Context, bookID int64) (float64, bool, error) {
	return 0, false, nil
}

func (*Nop) SetAverage(ctx context.Context, bookID int64, avg float64, ttl time.Duration) error {
	return nil
}

func (*Nop) InvalidateAverage(ctx context.Context, bookID int64) error {
	return nil
}
