package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	embedsql "github.com/gyeh/mrfingest/internal/sql"
)

// GetCachedPricing returns the stored upstream response and its fetch
// time, or a nil payload when the key has never been cached. Staleness
// is the caller's call; the store only reports what it has.
func (s *Store) GetCachedPricing(ctx context.Context, procedureID, metroSlug, priceType string) ([]byte, time.Time, error) {
	var (
		payload   []byte
		fetchedAt time.Time
	)
	err := s.pool.QueryRow(ctx, embedsql.PricingCacheGet, procedureID, metroSlug, priceType).
		Scan(&payload, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("pricing cache get: %w", err)
	}
	return payload, fetchedAt, nil
}

// PutCachedPricing stores a fresh upstream response, resetting the hit
// counter and fetch time.
func (s *Store) PutCachedPricing(ctx context.Context, procedureID, metroSlug, priceType string, payload []byte) error {
	if _, err := s.pool.Exec(ctx, embedsql.PricingCachePut, procedureID, metroSlug, priceType, payload); err != nil {
		return fmt.Errorf("pricing cache put: %w", err)
	}
	return nil
}

// TouchPricingHit bumps the hit counter. The increment runs in SQL so
// concurrent processes never lose counts.
func (s *Store) TouchPricingHit(ctx context.Context, procedureID, metroSlug, priceType string) error {
	if _, err := s.pool.Exec(ctx, embedsql.PricingCacheTouch, procedureID, metroSlug, priceType); err != nil {
		return fmt.Errorf("pricing cache touch: %w", err)
	}
	return nil
}
