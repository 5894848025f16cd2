package models

// GameState represents the lifecycle state of a room
type GameState string

const (
	// GameStateLobby indicates players are gathering and readying up
	GameStateLobby GameState = "lobby"

	// GameStatePlaying indicates rounds are in progress
	GameStatePlaying GameState = "playing"

	// GameStateResults indicates the game has ended and results are shown
	GameStateResults GameState = "results"
)

// IsLobby returns true if the room is in the lobby
func (s GameState) IsLobby() bool {
	return s == GameStateLobby
}

// IsPlaying returns true if a game is in progress
func (s GameState) IsPlaying() bool {
	return s == GameStatePlaying
}

// IsResults returns true if the game has ended
func (s GameState) IsResults() bool {
	return s == GameStateResults
}

// Role is a participant's secret per-round role
type Role string

const (
	// RoleNone is the role of lobby members and disabled participants
	RoleNone Role = ""

	// RoleAdversary seeds defects and tries to avoid detection
	RoleAdversary Role = "adversary"

	// RoleAlly reviews the code and tries to find the adversary
	RoleAlly Role = "ally"
)

// Faction is the side that won a game
type Faction string

const (
	// FactionNone is used when the game ran out of rounds without an early win
	FactionNone Faction = ""

	// FactionAllies wins when the adversary is voted out
	FactionAllies Faction = "allies"

	// FactionAdversary wins when too few allies remain
	FactionAdversary Faction = "adversary"
)
