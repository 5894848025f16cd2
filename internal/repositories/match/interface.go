package match

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/codered/internal/repositories/match Repository

import (
	"context"

	"github.com/KirkDiggler/codered/internal/models"
)

// Repository archives finished matches
type Repository interface {
	// SaveMatch persists a finished match
	SaveMatch(ctx context.Context, input *SaveMatchInput) error

	// GetMatch retrieves a match by ID
	GetMatch(ctx context.Context, input *GetMatchInput) (*models.Match, error)

	// ListRoomMatches retrieves the most recent matches played in a room, newest first
	ListRoomMatches(ctx context.Context, input *ListRoomMatchesInput) (*ListRoomMatchesOutput, error)
}
