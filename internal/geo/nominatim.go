package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Streak_discord_bot/internal/utils"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"

// Address is the part of a reverse lookup the quiz needs.
type Address struct {
	Country     string
	Subdivision string
	Raw         map[string]interface{}
}

// Geocoder turns coordinates into an address.
type Geocoder interface {
	ReverseLookup(ctx context.Context, lat, lng float64) (*Address, error)
}

// subdivisionKeys are tried in order; the first non-empty one names the region.
var subdivisionKeys = []string{
	"state", "province", "region", "territory", "state_district", "county",
	"administrative", "municipality", "district", "city", "town", "village",
	"locality", "borough", "suburb", "neighbourhood", "hamlet",
	"ISO3166-2-lvl4", "ISO3166-2-lvl6", "political",
}

const unknownSubdivision = "Unknown subdivision"

// Nominatim is the OpenStreetMap reverse geocoder client.
type Nominatim struct {
	endpoint  string
	userAgent string
	client    *http.Client
	limiter   *utils.RateLimiter
}

func NewNominatim(endpoint string, limiter *utils.RateLimiter) *Nominatim {
	if endpoint == "" {
		endpoint = DefaultNominatimURL
	}
	return &Nominatim{
		endpoint:  endpoint,
		userAgent: "GeoBot/1.0",
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   limiter,
	}
}

// Host is used as the rate limiter key.
func (n *Nominatim) Host() string {
	u, err := url.Parse(n.endpoint)
	if err != nil {
		return n.endpoint
	}
	return u.Host
}

func (n *Nominatim) ReverseLookup(ctx context.Context, lat, lng float64) (*Address, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "5")
	q.Set("addressdetails", "1")

	var payload struct {
		Address map[string]interface{} `json:"address"`
	}
	err := n.limiter.Do(ctx, n.Host(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", n.userAgent)
		req.Header.Set("Accept-Language", "en")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("nominatim status: %s", resp.Status)
		}
		return json.NewDecoder(resp.Body).Decode(&payload)
	})
	if err != nil {
		return nil, err
	}

	addr := &Address{Raw: payload.Address, Subdivision: unknownSubdivision}
	if c, ok := payload.Address["country"].(string); ok {
		addr.Country = c
	}
	for _, k := range subdivisionKeys {
		if s, ok := payload.Address[k].(string); ok && s != "" {
			addr.Subdivision = s
			break
		}
	}
	return addr, nil
}
