package models

// Participant represents a member of a room
type Participant struct {
	// ID is the unique identifier handed to the client on create/join
	ID string

	// Name is the trimmed display name
	Name string

	// IsHost indicates the participant may start the game
	IsHost bool

	// IsReady is the lobby ready toggle
	IsReady bool

	// Role is the secret role for the current round
	Role Role

	// Disabled is set once the participant is voted out and lasts until the game resets
	Disabled bool

	// Color is the presence color shown next to the participant's cursor
	Color string
}

// IsActive returns true if the participant still takes part in the game
func (p *Participant) IsActive() bool {
	return !p.Disabled
}

// IsAdversary returns true if the participant holds the adversary role
func (p *Participant) IsAdversary() bool {
	return p.Role == RoleAdversary
}
