// Package geo supplies quiz locations: per-map coordinate catalogs fetched
// from WorldGuessr and country resolution through reverse geocoding.
package geo

import (
	"fmt"
	"net/url"
	"strconv"
)

// Location is one catalog entry. Heading, Pitch and Zoom are optional camera hints.
type Location struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Heading *float64 `json:"heading,omitempty"`
	Pitch   *float64 `json:"pitch,omitempty"`
	Zoom    *float64 `json:"zoom,omitempty"`
}

// Same compares coordinates and camera hints by value.
func (l Location) Same(o Location) bool {
	return l.Lat == o.Lat && l.Lng == o.Lng &&
		eqPtr(l.Heading, o.Heading) && eqPtr(l.Pitch, o.Pitch) && eqPtr(l.Zoom, o.Zoom)
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// LocationInfo is the resolved answer for a coordinate.
type LocationInfo struct {
	Country     string                 `json:"country"` // lowercase
	Subdivision string                 `json:"subdivision"`
	Address     map[string]interface{} `json:"address,omitempty"`
	// Partial marks a best-effort result returned when the geocoder could not be reached.
	Partial bool `json:"-"`
}

// CoordKey is the cache key: both coordinates rounded to 6 decimals.
func CoordKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

const embedBaseURL = "https://www.worldguessr.com/svEmbed"

// EmbedURL builds the viewer URL with markers, road labels and the answer hidden.
func EmbedURL(loc Location) string {
	params := url.Values{}
	params.Set("nm", "true")
	params.Set("npz", "false")
	params.Set("showRoadLabels", "false")
	params.Set("lat", formatFloat(loc.Lat))
	params.Set("long", formatFloat(loc.Lng))
	params.Set("showAnswer", "false")
	if loc.Heading != nil {
		params.Set("heading", formatFloat(*loc.Heading))
	}
	if loc.Pitch != nil {
		params.Set("pitch", formatFloat(*loc.Pitch))
	}
	if loc.Zoom != nil {
		params.Set("zoom", formatFloat(*loc.Zoom))
	}
	return embedBaseURL + "?" + params.Encode()
}

// StreetViewURL links the location on Google Maps for the answer reveal.
func StreetViewURL(loc Location) string {
	return fmt.Sprintf("https://www.google.com/maps/@?api=1&map_action=pano&viewpoint=%s,%s&heading=0&pitch=0",
		formatFloat(loc.Lat), formatFloat(loc.Lng))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
