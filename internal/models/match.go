package models

import (
	"time"
)

// Match is the archived summary of a finished game
type Match struct {
	// ID is the unique identifier for the match
	ID string

	// RoomCode is the room the match was played in
	RoomCode string

	// Winner is the winning faction, empty when the rounds ran out
	Winner Faction

	// Reason explains how the game ended
	Reason string

	// RoundsPlayed is the number of rounds started
	RoundsPlayed int

	// Players holds the final standings
	Players []*MatchPlayer

	// EndedAt is when the game ended
	EndedAt time.Time
}

// MatchPlayer is a participant's final standing
type MatchPlayer struct {
	ID       string
	Name     string
	Score    int
	Disabled bool
}
