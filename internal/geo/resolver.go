package geo

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/metrics"
)

// usTerritories are reported by the geocoder as "United States" with the
// territory in the subdivision; the quiz answer is the territory itself.
var usTerritories = []string{
	"us virgin islands",
	"puerto rico",
	"guam",
	"american samoa",
	"northern mariana islands",
}

// Resolver answers "which country is this coordinate in", with caching.
type Resolver struct {
	geocoder Geocoder
	cache    Cache
}

func NewResolver(geocoder Geocoder, cache Cache) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{geocoder: geocoder, cache: cache}
}

// ResolveCountry returns the cached or freshly geocoded answer.
// nil, nil means the geocoder answered without a country (nothing is cached).
// A geocoder failure yields a Partial result with an empty country instead of an error.
func (r *Resolver) ResolveCountry(ctx context.Context, lat, lng float64) (*LocationInfo, error) {
	key := CoordKey(lat, lng)
	if info, ok := r.cache.Get(ctx, key); ok {
		metrics.GeocodeRequestsTotal.WithLabelValues("hit").Inc()
		return info, nil
	}

	addr, err := r.geocoder.ReverseLookup(ctx, lat, lng)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.GeocodeRequestsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("coord", key).Msg("Reverse geocoding failed")
		return &LocationInfo{Subdivision: unknownSubdivision, Partial: true}, nil
	}

	country := territoryOverride(addr.Country, addr.Subdivision)
	if country == "" {
		metrics.GeocodeRequestsTotal.WithLabelValues("unresolved").Inc()
		return nil, nil
	}

	info := &LocationInfo{
		Country:     country,
		Subdivision: addr.Subdivision,
		Address:     addr.Raw,
	}
	if info.Subdivision == "" {
		info.Subdivision = unknownSubdivision
	}
	r.cache.Put(ctx, key, info)
	metrics.GeocodeRequestsTotal.WithLabelValues("resolved").Inc()

	// 競合時も最初に入った値を返す
	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, nil
	}
	return info, nil
}

// territoryOverride lowercases country and rewrites US territories.
func territoryOverride(country, subdivision string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if c != "united states" {
		return c
	}
	sub := strings.ToLower(subdivision)
	for _, t := range usTerritories {
		if strings.Contains(sub, t) {
			return t
		}
	}
	return c
}

// Cached reports whether the coordinate has already been resolved.
func (r *Resolver) Cached(ctx context.Context, lat, lng float64) bool {
	_, ok := r.cache.Get(ctx, CoordKey(lat, lng))
	return ok
}

// CacheSize is the number of resolved coordinates.
func (r *Resolver) CacheSize() int {
	return r.cache.Len()
}
