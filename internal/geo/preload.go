package geo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"Streak_discord_bot/internal/metrics"
)

// PreloadStats summarises one map's preload pass.
type PreloadStats struct {
	Map      string
	Total    int
	Resolved int
	Evicted  int
	Failed   int
}

// Preload fetches every map and geocodes its uncached locations so the first
// rounds start fast. Locations without a country are evicted. A map that
// cannot be fetched is logged and skipped.
func Preload(ctx context.Context, catalog *Catalog, resolver *Resolver, mapNames []string) ([]PreloadStats, error) {
	stats := make([]PreloadStats, len(mapNames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	for i, name := range mapNames {
		i, name := i, name
		g.Go(func() error {
			s, err := preloadMap(ctx, catalog, resolver, name)
			stats[i] = s
			if err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Str("map", name).Msg("Preload skipped map")
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func preloadMap(ctx context.Context, catalog *Catalog, resolver *Resolver, name string) (PreloadStats, error) {
	st := PreloadStats{Map: name}
	start := time.Now()

	locs, err := catalog.Locations(ctx, name)
	if err != nil {
		return st, err
	}
	st.Total = len(locs)

	for i, loc := range locs {
		if ctx.Err() != nil {
			return st, ctx.Err()
		}
		if resolver.Cached(ctx, loc.Lat, loc.Lng) {
			st.Resolved++
			continue
		}
		info, err := resolver.ResolveCountry(ctx, loc.Lat, loc.Lng)
		if err != nil {
			return st, err
		}
		switch {
		case info == nil:
			// snapshot index; DeleteAt falls back to a value search after earlier removals
			if catalog.DeleteAt(name, i-st.Evicted, loc) {
				st.Evicted++
				metrics.LocationsEvictedTotal.WithLabelValues(name).Inc()
			}
		case info.Partial:
			st.Failed++
		default:
			st.Resolved++
		}
	}

	log.Info().
		Str("map", name).
		Int("total", st.Total).
		Int("resolved", st.Resolved).
		Int("evicted", st.Evicted).
		Int("failed", st.Failed).
		Dur("took", time.Since(start)).
		Msg("Map preload finished")
	return st, nil
}

// IsUserError reports whether err is caused by the requested map and can be
// shown to the user as is.
func IsUserError(err error) bool {
	var unknown *UnknownMapError
	var notReady *MapNotReadyError
	return errors.As(err, &unknown) || errors.As(err, &notReady)
}
