package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/codered/internal/repositories/room Repository

import (
	"context"

	"github.com/KirkDiggler/codered/internal/models"
)

// Repository holds the live rooms of this process
type Repository interface {
	// CreateRoom stores a room under a freshly generated, unused code
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*models.Room, error)

	// GetRoom retrieves a room by code
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// DeleteRoom removes a room; deleting an unknown code is a no-op
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error

	// CountRooms returns the number of live rooms
	CountRooms(ctx context.Context) int
}
