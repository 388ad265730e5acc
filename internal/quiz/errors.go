package quiz

import (
	"context"
	"errors"
	"fmt"

	"Streak_discord_bot/internal/browser"
	"Streak_discord_bot/internal/geo"
)

var (
	ErrRoundInProgress = errors.New("quiz: round already in progress")
	ErrNoRound         = errors.New("quiz: no round in progress")
)

// NoResolvableLocationError is returned once every location of a map has
// been evicted.
type NoResolvableLocationError struct {
	Map string
}

func (e *NoResolvableLocationError) Error() string {
	return fmt.Sprintf("no resolvable location left on map %s", e.Map)
}

// UserMessage turns a round error into the line shown in chat.
func UserMessage(err error) string {
	var (
		unknown    *geo.UnknownMapError
		notReady   *geo.MapNotReadyError
		exhausted  *NoResolvableLocationError
		unresolved *geo.GeocodeUnresolvedError
		launch     *browser.ResourceLaunchError
	)
	switch {
	case errors.Is(err, ErrRoundInProgress):
		return "A quiz is already running here. Guess with `!g <country>` or end it with `!stop`."
	case errors.Is(err, ErrNoRound):
		return "There is no quiz running in this channel."
	case errors.As(err, &unknown):
		return fmt.Sprintf("Map \"%s\" not found.", unknown.Name)
	case errors.As(err, &notReady):
		return "Could not fetch locations for this map."
	case errors.As(err, &exhausted):
		return fmt.Sprintf("No playable locations are left on %s.", exhausted.Map)
	case errors.As(err, &unresolved):
		return "Error fetching country for the location. Please try `!play` again."
	case errors.As(err, &launch), browser.IsRenderError(err):
		return "Couldn't load the panorama. Please try `!play` again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The quiz was interrupted. Please try `!play` again."
	default:
		return "An error occurred while creating the quiz. Please try `!play` again."
	}
}

// failureReason labels a round error for metrics.
func failureReason(err error) string {
	var (
		unknown    *geo.UnknownMapError
		notReady   *geo.MapNotReadyError
		exhausted  *NoResolvableLocationError
		unresolved *geo.GeocodeUnresolvedError
		launch     *browser.ResourceLaunchError
	)
	switch {
	case errors.As(err, &unknown):
		return "unknown_map"
	case errors.As(err, &notReady):
		return "map_not_ready"
	case errors.As(err, &exhausted):
		return "no_location"
	case errors.As(err, &unresolved):
		return "geocode"
	case errors.As(err, &launch):
		return "launch"
	case browser.IsRenderError(err):
		return "render"
	default:
		return "other"
	}
}
