package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"Streak_discord_bot/internal/utils"
)

const DefaultCatalogURL = "https://api.worldguessr.com/mapLocations/"

// MapDirectory resolves a configured map name to its catalog slug.
type MapDirectory interface {
	Slug(mapName string) (string, bool)
}

type catalogResponse struct {
	Ready     bool       `json:"ready"`
	Locations []Location `json:"locations"`
}

// Catalog fetches each map's location list once and keeps it for the
// process lifetime. Entries can be evicted when they fail to geocode.
type Catalog struct {
	baseURL string
	client  *http.Client
	limiter *utils.RateLimiter
	maps    MapDirectory

	group singleflight.Group
	mu    sync.Mutex
	cache map[string][]Location // slug → locations
}

func NewCatalog(baseURL string, maps MapDirectory, limiter *utils.RateLimiter) *Catalog {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}
	return &Catalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
		maps:    maps,
		cache:   make(map[string][]Location),
	}
}

// Locations returns a snapshot of the map's cached list, fetching it on first use.
func (c *Catalog) Locations(ctx context.Context, mapName string) ([]Location, error) {
	slug, ok := c.maps.Slug(mapName)
	if !ok {
		return nil, &UnknownMapError{Name: mapName}
	}

	if locs, ok := c.snapshot(slug); ok {
		return locs, nil
	}

	// 取得は呼び出し元のキャンセルから切り離し、待っている他のチャンネルを巻き込まない
	ch := c.group.DoChan(slug, func() (interface{}, error) {
		if _, ok := c.snapshot(slug); ok {
			return nil, nil
		}
		locs, err := c.fetch(context.WithoutCancel(ctx), mapName, slug)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[slug] = locs
		c.mu.Unlock()
		log.Info().Str("map", mapName).Int("locations", len(locs)).Msg("Map locations cached")
		return nil, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	locs, _ := c.snapshot(slug)
	return locs, nil
}

func (c *Catalog) snapshot(slug string) ([]Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	locs, ok := c.cache[slug]
	if !ok {
		return nil, false
	}
	out := make([]Location, len(locs))
	copy(out, locs)
	return out, true
}

func (c *Catalog) fetch(ctx context.Context, mapName, slug string) ([]Location, error) {
	endpoint := c.baseURL + url.PathEscape(slug)
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = c.limiter.Do(ctx, u.Host, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch map %s: %w", mapName, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return &MapNotReadyError{Name: mapName, Reason: resp.Status}
		}
		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}

	var parsed catalogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode map %s: %w", mapName, err)
	}
	if !parsed.Ready || len(parsed.Locations) == 0 {
		return nil, &MapNotReadyError{Name: mapName, Reason: "not ready or contains no locations"}
	}
	return parsed.Locations, nil
}

// DeleteAt evicts loc from the map. index is where the caller saw it; if a
// concurrent eviction moved or removed it the entry is searched by value.
// Reports whether something was removed.
func (c *Catalog) DeleteAt(mapName string, index int, loc Location) bool {
	slug, ok := c.maps.Slug(mapName)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	locs := c.cache[slug]
	if index < 0 || index >= len(locs) || !locs[index].Same(loc) {
		index = -1
		for i := range locs {
			if locs[i].Same(loc) {
				index = i
				break
			}
		}
	}
	if index < 0 {
		return false
	}
	c.cache[slug] = append(locs[:index], locs[index+1:]...)
	return true
}

// Cached reports how many locations are cached for the map (0 if not fetched).
func (c *Catalog) Cached(mapName string) int {
	slug, ok := c.maps.Slug(mapName)
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache[slug])
}
