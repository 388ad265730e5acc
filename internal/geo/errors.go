package geo

import "fmt"

// UnknownMapError: the map name or its slug is not configured. The user can fix the input.
type UnknownMapError struct {
	Name string
}

func (e *UnknownMapError) Error() string {
	return fmt.Sprintf("unknown map name: %s", e.Name)
}

// MapNotReadyError: the catalog answered but has nothing usable yet.
type MapNotReadyError struct {
	Name   string
	Reason string
}

func (e *MapNotReadyError) Error() string {
	return fmt.Sprintf("map %q is not ready: %s", e.Name, e.Reason)
}

// GeocodeUnresolvedError: a coordinate produced no usable country.
type GeocodeUnresolvedError struct {
	Lat, Lng float64
}

func (e *GeocodeUnresolvedError) Error() string {
	return fmt.Sprintf("no country for %s", CoordKey(e.Lat, e.Lng))
}
