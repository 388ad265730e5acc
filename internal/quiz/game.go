package quiz

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"Streak_discord_bot/internal/geo"
	"Streak_discord_bot/internal/metrics"
	"Streak_discord_bot/internal/streaks"
)

// AdvanceDelay separates the "correct" reply from the next round's prompt.
const AdvanceDelay = 300 * time.Millisecond

// maxTransientRetries bounds how often a round start re-picks a location
// because the geocoder could not be reached.
const maxTransientRetries = 3

type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

type LocationSource interface {
	Locations(ctx context.Context, mapName string) ([]geo.Location, error)
	DeleteAt(mapName string, index int, loc geo.Location) bool
}

type CountryResolver interface {
	ResolveCountry(ctx context.Context, lat, lng float64) (*geo.LocationInfo, error)
}

type MapDirectory interface {
	Resolve(input string) (string, bool)
	Names() []string
}

type ResultStore interface {
	RecordResult(userID, username, mapName string, streak int, avgMs float64) error
	PersonalBest(userID, mapName string) (streaks.PersonalBest, bool)
	PersonalBests(userID string) map[string]streaks.PersonalBest
	Leaderboard(mapName string) []streaks.Entry
	Rank(mapName, userID string) int
	FindUserByName(name string) (userID, username string, ok bool)
}

// Presenter posts round progress to the channel. Calls are made without
// holding the game lock and may block on the network.
type Presenter interface {
	// Loading shows a placeholder; the returned func removes it.
	Loading(channelID, mapName string) (dismiss func())
	LocationEvicted(channelID, mapName string)
	RoundStarted(channelID string, round Round, image []byte) error
	RoundFailed(channelID string, err error)
}

// Deps groups the collaborators of a Game.
type Deps struct {
	Renderer  Renderer
	Locations LocationSource
	Resolver  CountryResolver
	Maps      MapDirectory
	Store     ResultStore
	Presenter Presenter
}

// Game holds every channel's session.
type Game struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session

	base     context.Context
	shutdown context.CancelFunc

	now      func() time.Time
	intn     func(n int) int
	schedule func(d time.Duration, f func())
}

func NewGame(deps Deps) *Game {
	base, cancel := context.WithCancel(context.Background())
	return &Game{
		deps:     deps,
		sessions: make(map[string]*Session),
		base:     base,
		shutdown: cancel,
		now:      time.Now,
		intn:     rand.Intn,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Shutdown cancels every in-flight round load and pending auto-advance.
func (g *Game) Shutdown() {
	g.shutdown()
}

// Session returns the channel's current state.
func (g *Game) Session(channelID string) (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[channelID]
	if !ok {
		return Session{Phase: PhaseIdle}, false
	}
	return *s, true
}

// ActiveChannels counts channels with a round loading or open.
func (g *Game) ActiveChannels() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for _, s := range g.sessions {
		if s.inProgress() {
			n++
		}
	}
	return n
}

// StartRound picks a location on the requested map (random map when
// mapInput is empty), renders it and opens the round. It blocks until the
// round is open or has failed. A failed start leaves the channel idle.
func (g *Game) StartRound(ctx context.Context, channelID, mapInput, userID string) error {
	return g.startRound(ctx, channelID, mapInput, userID, "")
}

// startRound with after set only proceeds while the channel still holds
// that resolved round, so a stop during the advance delay wins.
func (g *Game) startRound(ctx context.Context, channelID, mapInput, userID, after string) error {
	g.mu.Lock()
	prev := g.sessions[channelID]
	if after != "" && (prev == nil || prev.RoundID != after || prev.Phase != PhaseResolved) {
		g.mu.Unlock()
		return nil
	}
	if prev != nil && prev.inProgress() {
		g.mu.Unlock()
		return ErrRoundInProgress
	}

	mapName, err := g.pickMap(mapInput)
	if err != nil {
		g.mu.Unlock()
		return err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	next := &Session{
		RoundID:   uuid.NewString(),
		Phase:     PhaseLoading,
		MapName:   mapName,
		StartedBy: userID,
		cancel:    cancel,
	}
	if prev != nil {
		next.Streak = prev.Streak
		next.AverageMs = prev.AverageMs
	}
	g.sessions[channelID] = next
	g.mu.Unlock()
	defer cancel()

	logger := log.With().Str("channel", channelID).Str("map", mapName).Str("round", next.RoundID).Logger()

	dismiss := g.deps.Presenter.Loading(channelID, mapName)
	loc, info, image, err := g.load(loadCtx, channelID, mapName)
	dismiss()

	if err != nil {
		if !g.clearIfCurrent(channelID, next.RoundID) {
			logger.Debug().Err(err).Msg("Discarding result of abandoned round")
			return nil
		}
		metrics.RoundFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		logger.Error().Err(err).Msg("Error starting quiz")
		return err
	}

	round := Round{ID: next.RoundID, MapName: mapName, Streak: next.Streak, AverageMs: next.AverageMs}
	if !g.isCurrent(channelID, next.RoundID) {
		logger.Debug().Msg("Discarding render of abandoned round")
		return nil
	}
	if err := g.deps.Presenter.RoundStarted(channelID, round, image); err != nil {
		g.clearIfCurrent(channelID, next.RoundID)
		metrics.RoundFailuresTotal.WithLabelValues("post").Inc()
		return err
	}

	g.mu.Lock()
	cur := g.sessions[channelID]
	if cur == nil || cur.RoundID != next.RoundID {
		g.mu.Unlock()
		return nil
	}
	active := *cur
	active.Phase = PhaseActive
	active.Location = &loc
	active.Country = info.Country
	active.Subdivision = info.Subdivision
	active.StartTime = g.now()
	active.cancel = nil
	g.sessions[channelID] = &active
	g.mu.Unlock()

	metrics.RoundsStartedTotal.WithLabelValues(mapName).Inc()
	logger.Info().Str("answer", info.Country).Interface("address", info.Address).Msg("New quiz started")
	return nil
}

// pickMap must be called with g.mu held.
func (g *Game) pickMap(input string) (string, error) {
	if input != "" {
		name, ok := g.deps.Maps.Resolve(input)
		if !ok {
			return "", &geo.UnknownMapError{Name: input}
		}
		return name, nil
	}
	names := g.deps.Maps.Names()
	if len(names) == 0 {
		return "", &geo.UnknownMapError{Name: input}
	}
	return names[g.intn(len(names))], nil
}

// load picks locations until one resolves to a country, then renders it.
// Locations without a country are evicted from the map; every eviction
// shrinks the candidate list so the loop ends.
func (g *Game) load(ctx context.Context, channelID, mapName string) (geo.Location, *geo.LocationInfo, []byte, error) {
	transient := 0
	for {
		locs, err := g.deps.Locations.Locations(ctx, mapName)
		if err != nil {
			return geo.Location{}, nil, nil, err
		}
		if len(locs) == 0 {
			return geo.Location{}, nil, nil, &NoResolvableLocationError{Map: mapName}
		}

		idx := g.intn(len(locs))
		loc := locs[idx]

		info, err := g.deps.Resolver.ResolveCountry(ctx, loc.Lat, loc.Lng)
		if err != nil {
			return geo.Location{}, nil, nil, err
		}
		if info == nil {
			g.deps.Locations.DeleteAt(mapName, idx, loc)
			metrics.LocationsEvictedTotal.WithLabelValues(mapName).Inc()
			log.Warn().Str("map", mapName).Str("coord", geo.CoordKey(loc.Lat, loc.Lng)).Msg("Evicting location without country")
			g.deps.Presenter.LocationEvicted(channelID, mapName)
			continue
		}
		if info.Partial || info.Country == "" {
			transient++
			if transient > maxTransientRetries {
				return geo.Location{}, nil, nil, &geo.GeocodeUnresolvedError{Lat: loc.Lat, Lng: loc.Lng}
			}
			continue
		}

		image, err := g.deps.Renderer.Render(ctx, geo.EmbedURL(loc))
		if err != nil {
			return geo.Location{}, nil, nil, err
		}
		return loc, info, image, nil
	}
}

func (g *Game) isCurrent(channelID, roundID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cur := g.sessions[channelID]
	return cur != nil && cur.RoundID == roundID
}

// clearIfCurrent removes the channel's session if it still is roundID.
func (g *Game) clearIfCurrent(channelID, roundID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cur := g.sessions[channelID]
	if cur == nil || cur.RoundID != roundID {
		return false
	}
	delete(g.sessions, channelID)
	return true
}

// SubmitGuess scores a guess against the open round. The second result is
// false when the guess was ignored (no open round, round already decided,
// empty guess); the caller must not reply in that case.
func (g *Game) SubmitGuess(channelID, userID, username, guess string) (GuessOutcome, bool) {
	if guess == "" {
		return GuessOutcome{}, false
	}

	g.mu.Lock()
	cur := g.sessions[channelID]
	if cur == nil || cur.Phase != PhaseActive {
		g.mu.Unlock()
		return GuessOutcome{}, false
	}
	cur = cur.withParticipant(userID, username)
	elapsed := float64(g.now().Sub(cur.StartTime).Milliseconds())

	out := GuessOutcome{
		MapName:      cur.MapName,
		Country:      cur.Country,
		Subdivision:  cur.Subdivision,
		Location:     *cur.Location,
		ElapsedMs:    elapsed,
		Participants: cur.Participants,
	}

	if geo.CheckGuess(guess, cur.Country) {
		next := *cur
		next.Phase = PhaseResolved
		next.Streak++
		next.AverageMs += (elapsed - next.AverageMs) / float64(next.Streak)
		next.Participants = nil
		g.sessions[channelID] = &next
		g.mu.Unlock()

		out.Correct = true
		out.Streak = next.Streak
		out.AverageMs = next.AverageMs

		if err := g.deps.Store.RecordResult(userID, username, next.MapName, next.Streak, next.AverageMs); err != nil {
			log.Error().Err(err).Str("user", userID).Str("map", next.MapName).Msg("Failed to save streak")
		}
		if pb, ok := g.deps.Store.PersonalBest(userID, next.MapName); ok {
			out.PersonalBest = pb.Streak
		}
		metrics.GuessesTotal.WithLabelValues("correct").Inc()

		roundID, mapName := next.RoundID, next.MapName
		g.schedule(AdvanceDelay, func() {
			g.advance(channelID, mapName, userID, roundID)
		})
		return out, true
	}

	lost := *cur
	lost.Phase = PhaseLost
	lost.Streak = 0
	lost.AverageMs = 0
	lost.Location = nil
	lost.Country = ""
	lost.Subdivision = ""
	lost.Participants = nil
	g.sessions[channelID] = &lost
	g.mu.Unlock()

	out.Streak = cur.Streak
	out.AverageMs = cur.AverageMs
	if pb, ok := g.deps.Store.PersonalBest(userID, cur.MapName); ok {
		out.PersonalBest = pb.Streak
	}
	metrics.GuessesTotal.WithLabelValues("wrong").Inc()
	return out, true
}

func (g *Game) advance(channelID, mapName, userID, after string) {
	if g.base.Err() != nil {
		return
	}
	if err := g.startRound(g.base, channelID, mapName, userID, after); err != nil {
		g.deps.Presenter.RoundFailed(channelID, err)
	}
}

// StopRound abandons the round that is loading, open or waiting to
// advance. An in-flight load is cancelled. Records are never touched.
func (g *Game) StopRound(channelID string) (StopOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cur := g.sessions[channelID]
	if cur == nil || cur.Phase == PhaseLost {
		return StopOutcome{}, ErrNoRound
	}
	if cur.cancel != nil {
		cur.cancel()
	}
	delete(g.sessions, channelID)

	log.Info().Str("channel", channelID).Str("map", cur.MapName).Int("streak", cur.Streak).Msg("Quiz stopped")
	return StopOutcome{
		MapName:      cur.MapName,
		FinalStreak:  cur.Streak,
		AverageMs:    cur.AverageMs,
		Participants: cur.Participants,
	}, nil
}

// Leaderboard resolves the map name and returns its sorted rows.
func (g *Game) Leaderboard(mapInput string) (string, []streaks.Entry, error) {
	name, ok := g.deps.Maps.Resolve(mapInput)
	if !ok {
		return "", nil, &geo.UnknownMapError{Name: mapInput}
	}
	return name, g.deps.Store.Leaderboard(name), nil
}

// MapStat is one line of a user's stats.
type MapStat struct {
	MapName string
	streaks.PersonalBest
	Rank int // 0 when not ranked
}

// PersonalStats lists a user's records sorted by map name.
func (g *Game) PersonalStats(userID string) []MapStat {
	pbs := g.deps.Store.PersonalBests(userID)
	out := make([]MapStat, 0, len(pbs))
	for name, pb := range pbs {
		out = append(out, MapStat{MapName: name, PersonalBest: pb, Rank: g.deps.Store.Rank(name, userID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapName < out[j].MapName })
	return out
}

// FindUser looks a player up by a username stored with their records.
func (g *Game) FindUser(name string) (userID, username string, ok bool) {
	return g.deps.Store.FindUserByName(name)
}
