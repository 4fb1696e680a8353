// Package pricing answers procedure price lookups through a
// Postgres-backed cache in front of the upstream pricing API. Reads are
// cache-aside: a fresh entry short-circuits the API; a miss or a stale
// entry goes upstream, and the response is handed back before the cache
// write lands.
package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTTL is how long a cached pricing response stays servable.
	DefaultTTL = 24 * time.Hour

	writeBackTimeout = 10 * time.Second
)

// CacheStore is the persistence half of the cache. *store.Store
// satisfies it.
type CacheStore interface {
	GetCachedPricing(ctx context.Context, procedureID, metroSlug, priceType string) ([]byte, time.Time, error)
	PutCachedPricing(ctx context.Context, procedureID, metroSlug, priceType string, payload []byte) error
	TouchPricingHit(ctx context.Context, procedureID, metroSlug, priceType string) error
}

// Fetcher is the upstream half. *Client satisfies it.
type Fetcher interface {
	FetchPrices(ctx context.Context, procedureID, metroSlug, priceType string) ([]byte, error)
}

// Service coordinates the cache and the upstream client.
type Service struct {
	cache  CacheStore
	client Fetcher
	ttl    time.Duration
	log    zerolog.Logger
	wg     sync.WaitGroup
}

func NewService(cache CacheStore, client Fetcher, ttl time.Duration, log zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{cache: cache, client: client, ttl: ttl, log: log}
}

// Lookup returns the pricing payload for one (procedure, metro, price
// type) key. cached reports whether the payload came from the cache.
// Hit counting and cache write-back run in the background; only the
// upstream fetch can fail the lookup.
func (s *Service) Lookup(ctx context.Context, procedureID, metroSlug, priceType string) (payload []byte, cached bool, err error) {
	entry, fetchedAt, err := s.cache.GetCachedPricing(ctx, procedureID, metroSlug, priceType)
	if err != nil {
		// A broken cache read degrades to an API call, not a failure.
		s.log.Warn().Err(err).Str("procedure_id", procedureID).Msg("pricing cache read failed")
		entry = nil
	}

	if entry != nil && time.Since(fetchedAt) < s.ttl {
		s.background("pricing cache hit count", func(ctx context.Context) error {
			return s.cache.TouchPricingHit(ctx, procedureID, metroSlug, priceType)
		})
		return entry, true, nil
	}

	fresh, err := s.client.FetchPrices(ctx, procedureID, metroSlug, priceType)
	if err != nil {
		return nil, false, err
	}

	s.background("pricing cache write-back", func(ctx context.Context) error {
		return s.cache.PutCachedPricing(ctx, procedureID, metroSlug, priceType, fresh)
	})
	return fresh, false, nil
}

// Wait blocks until every background cache write has finished. Callers
// drain the service before shutting down the pool behind it.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) background(op string, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeBackTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn().Err(err).Msg(op + " failed")
		}
	}()
}
