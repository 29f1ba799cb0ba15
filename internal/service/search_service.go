package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"components-api/internal/geocode"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// MinQueryLength is the minimum number of characters before a search fires.
// Below this the dropdown stays hidden and no request is issued.
const MinQueryLength = 3

// GeocodeClient interface for dependency injection
type GeocodeClient interface {
	Search(ctx context.Context, query string) ([]geocode.Result, error)
}

// ResultCache interface for dependency injection; a nil cache disables caching.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]geocode.Result, bool, error)
	Set(ctx context.Context, key string, results []geocode.Result) error
}

// SearchService contains the core business logic for place search: the minimum
// query length, result caching, and the failure semantics of the search field.
// Upstream failures are swallowed and surfaced as an empty result set; a
// cancelled request is a no-op rather than an error. The UI never crashes on a
// geocoding failure.
type SearchService struct {
	client GeocodeClient
	cache  ResultCache
	group  singleflight.Group
	log    zerolog.Logger
}

// NewSearchService creates a new search service. cache may be nil.
func NewSearchService(client GeocodeClient, cache ResultCache, log zerolog.Logger) *SearchService {
	return &SearchService{
		client: client,
		cache:  cache,
		log:    log.With().Str("component", "search").Logger(),
	}
}

// Search resolves a free-text query to geocoding results. Queries shorter than
// MinQueryLength return nil without touching the network. Concurrent identical
// queries collapse into a single upstream call.
func (s *SearchService) Search(ctx context.Context, query string) []geocode.Result {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return nil
	}

	key := strings.ToLower(query)

	if s.cache != nil {
		results, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Msg("geocode cache read failed")
		} else if hit {
			return results
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.client.Search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// User-initiated abort, not a failure.
			return nil
		}
		s.log.Error().Err(err).Str("query", query).Msg("geocoding search failed")
		return nil
	}

	results := v.([]geocode.Result)

	if s.cache != nil && len(results) > 0 {
		if err := s.cache.Set(context.WithoutCancel(ctx), key, results); err != nil {
			s.log.Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	return results
}
