package cadence

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/internal/storage"
)

// Gate decides whether the monthly group is due in this invocation.
type Gate struct {
	store storage.Store
	now   func() time.Time
	log   logger.Logger
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock overrides the time source used to compare against the marker.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate builds a gate over the given marker store.
func NewGate(store storage.Store, log logger.Logger, opts ...Option) *Gate {
	g := &Gate{store: store, now: time.Now, log: logger.Ensure(log)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ShouldFetchMonthly reports true when no marker exists or the marker's
// year/month differs from the current one. Unreadable or malformed markers
// count as missing. It never writes.
func (g *Gate) ShouldFetchMonthly(ctx context.Context) bool {
	if g == nil || g.store == nil {
		return true
	}

	marker, ok, err := g.store.LoadMarker(ctx)
	if err != nil {
		g.log.WarnObj("cadence marker unreadable; fetching monthly group", "error", err)
		return true
	}
	if !ok {
		return true
	}

	now := g.now()
	due := now.Year() != marker.Year || int(now.Month()) != marker.Month
	g.log.DebugObj("cadence marker checked", "cadence_state", map[string]any{
		"marker_year":  marker.Year,
		"marker_month": marker.Month,
		"monthly_due":  due,
	})
	return due
}

// RecordMonthlyRun persists year/month as the last monthly fetch.
func (g *Gate) RecordMonthlyRun(ctx context.Context, year int, month time.Month) error {
	if g == nil || g.store == nil {
		return fmt.Errorf("cadence gate is not initialized")
	}
	m := domain.Marker{Year: year, Month: int(month)}
	if err := g.store.SaveMarker(ctx, m); err != nil {
		return fmt.Errorf("record monthly run: %w", err)
	}
	return nil
}

// Now returns the gate's current time.
func (g *Gate) Now() time.Time {
	if g == nil || g.now == nil {
		return time.Now()
	}
	return g.now()
}
