package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoundsStartedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_rounds_started_total",
		Help: "Rounds that reached the active phase, by map",
	}, []string{"map"})
	RoundFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_round_failures_total",
		Help: "Rounds that failed to load, by reason",
	}, []string{"reason"})
	GuessesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_guesses_total",
		Help: "Scored guesses by result (correct/wrong)",
	}, []string{"result"})
	LocationsEvictedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_locations_evicted_total",
		Help: "Locations removed from a map because geocoding found no country",
	}, []string{"map"})
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_geocode_requests_total",
		Help: "Reverse geocoding lookups by outcome (hit/resolved/unresolved/error)",
	}, []string{"outcome"})
	BrowserLaunchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_browser_launches_total",
		Help: "Rendering engine launches by status",
	}, []string{"status"})
	RenderDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "streakbot_render_duration_seconds",
		Help:    "Panorama render duration",
		Buckets: []float64{1, 2, 4, 6, 8, 12, 20, 30, 60},
	})
	RenderReadyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streakbot_render_ready_total",
		Help: "Render readiness detection result (pixels/timeout)",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RoundsStartedTotal)
	prometheus.MustRegister(RoundFailuresTotal)
	prometheus.MustRegister(GuessesTotal)
	prometheus.MustRegister(LocationsEvictedTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(BrowserLaunchesTotal)
	prometheus.MustRegister(RenderDurationSeconds)
	prometheus.MustRegister(RenderReadyTotal)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
