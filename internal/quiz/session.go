// Package quiz runs one country-guessing round per channel.
package quiz

import (
	"context"
	"time"

	"Streak_discord_bot/internal/geo"
)

// Phase of a channel's session. A channel without an entry is idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseActive
	PhaseResolved
	PhaseLost
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseResolved:
		return "resolved"
	case PhaseLost:
		return "lost"
	case PhaseStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Participant is someone who guessed during the current run.
type Participant struct {
	UserID   string
	Username string
}

// Session is one state of a channel. Values are never modified after they
// are stored; every transition builds a new one. Location and Country are
// either both set (Active, Resolved) or both empty.
type Session struct {
	RoundID      string
	Phase        Phase
	MapName      string
	Location     *geo.Location
	Country      string
	Subdivision  string
	StartTime    time.Time
	Streak       int
	AverageMs    float64
	Participants []Participant
	StartedBy    string

	cancel context.CancelFunc
}

func (s *Session) inProgress() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseActive
}

// withParticipant returns a copy with the user added once.
func (s *Session) withParticipant(userID, username string) *Session {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return s
		}
	}
	next := *s
	next.Participants = make([]Participant, len(s.Participants), len(s.Participants)+1)
	copy(next.Participants, s.Participants)
	next.Participants = append(next.Participants, Participant{UserID: userID, Username: username})
	return &next
}

// Round is what the chat layer needs to announce a new round.
type Round struct {
	ID        string
	MapName   string
	Streak    int
	AverageMs float64
}

// GuessOutcome describes a scored guess.
type GuessOutcome struct {
	Correct      bool
	MapName      string
	Country      string
	Subdivision  string
	Location     geo.Location
	ElapsedMs    float64
	AverageMs    float64
	Streak       int // streak after a correct guess, final streak after a wrong one
	PersonalBest int
	Participants []Participant
}

// StopOutcome is returned when a round is abandoned.
type StopOutcome struct {
	MapName      string
	FinalStreak  int
	AverageMs    float64
	Participants []Participant
}
