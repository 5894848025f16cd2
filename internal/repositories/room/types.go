package room

import "github.com/KirkDiggler/codered/internal/models"

type CreateRoomInput struct {
	// Room is stored with its Code overwritten by the generated one
	Room *models.Room
}

type GetRoomInput struct {
	Code string
}

type DeleteRoomInput struct {
	Code string
}
