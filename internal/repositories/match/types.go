package match

import "github.com/KirkDiggler/codered/internal/models"

type SaveMatchInput struct {
	Match *models.Match
}

type GetMatchInput struct {
	MatchID string
}

type ListRoomMatchesInput struct {
	RoomCode string

	// Limit caps the number of matches returned; 0 uses the default
	Limit int
}

type ListRoomMatchesOutput struct {
	Matches []*models.Match
}
