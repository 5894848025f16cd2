package models

import (
	"sync"
	"time"
)

const (
	// MaxMembers is the room capacity
	MaxMembers = 6

	// MinPlayersToStart is the minimum number of members needed to start a game
	MinPlayersToStart = 3
)

// Room represents a game room and everything that happens in it
type Room struct {
	mu sync.Mutex

	// Code is the 6 character join code
	Code string

	// HostID is the participant allowed to start the game
	HostID string

	// Members holds the participants in join order
	Members []*Participant

	// Scores maps participant ID to score
	Scores map[string]int

	// State is the lifecycle state of the room
	State GameState

	// CurrentRound is the 1-based number of the latest round, 0 in the lobby
	CurrentRound int

	// TotalRounds is the number of rounds per game
	TotalRounds int

	// RoundDuration is the length of each round
	RoundDuration time.Duration

	// VoteDuration is how long a vote stays open
	VoteDuration time.Duration

	// Round is the current round, nil in the lobby
	Round *Round

	// ActiveVote is the open vote, nil when no vote is running
	ActiveVote *Vote

	// Winner is the winning faction once the game reached results
	Winner Faction

	// EndReason explains how the game ended
	EndReason string

	// CreatedAt is when the room was created
	CreatedAt time.Time

	// Destroyed is set when the last member leaves and the room is dropped from the registry
	Destroyed bool

	// joins counts every join so presence colors rotate even after leaves
	joins int
}

// Lock acquires the room lock
func (r *Room) Lock() {
	r.mu.Lock()
}

// Unlock releases the room lock
func (r *Room) Unlock() {
	r.mu.Unlock()
}

// Member returns the participant with the given ID, or nil
func (r *Room) Member(id string) *Participant {
	for _, p := range r.Members {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IsFull returns true if no more participants may join
func (r *Room) IsFull() bool {
	return len(r.Members) >= MaxMembers
}

// AddMember appends a participant, assigns a presence color and zeroes its score
func (r *Room) AddMember(p *Participant) {
	p.Color = PresenceColor(r.joins)
	r.joins++
	r.Members = append(r.Members, p)
	if r.Scores == nil {
		r.Scores = make(map[string]int)
	}
	r.Scores[p.ID] = 0
}

// RemoveMember removes a participant and its score. It returns the removed participant, or nil
func (r *Room) RemoveMember(id string) *Participant {
	for i, p := range r.Members {
		if p.ID != id {
			continue
		}
		r.Members = append(r.Members[:i], r.Members[i+1:]...)
		delete(r.Scores, id)
		return p
	}
	return nil
}

// ActiveMembers returns the non-disabled participants in join order
func (r *Room) ActiveMembers() []*Participant {
	active := make([]*Participant, 0, len(r.Members))
	for _, p := range r.Members {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	return active
}

// ActiveAllies counts non-disabled participants holding the ally role
func (r *Room) ActiveAllies() int {
	count := 0
	for _, p := range r.Members {
		if p.IsActive() && p.Role == RoleAlly {
			count++
		}
	}
	return count
}

// Adversary returns the current adversary, or nil
func (r *Room) Adversary() *Participant {
	for _, p := range r.Members {
		if p.IsAdversary() {
			return p
		}
	}
	return nil
}

// AddScore adds delta to a participant's score, never going below zero
func (r *Room) AddScore(id string, delta int) {
	score := r.Scores[id] + delta
	if score < 0 {
		score = 0
	}
	r.Scores[id] = score
}

// presenceColors is the palette used for cursors, assigned by join order
var presenceColors = []string{"#00ddff", "#00ff88", "#dd00ff", "#ffcc00", "#ff9900", "#ff3366"}

// PresenceColor returns the palette color for the n-th join
func PresenceColor(n int) string {
	return presenceColors[n%len(presenceColors)]
}
