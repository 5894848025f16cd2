package room

import (
	"context"
	"sync"

	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/models"
)

// maxCodeAttempts bounds retries when a generated code is already taken
const maxCodeAttempts = 32

// Config holds configuration for the in-memory room repository
type Config struct {
	Generator roomcode.Generator
}

type memoryRepository struct {
	mu        sync.RWMutex
	rooms     map[string]*models.Room
	generator roomcode.Generator
}

// NewMemory creates an in-memory room repository
func NewMemory(cfg *Config) (*memoryRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Generator == nil {
		return nil, ErrNilGenerator
	}

	return &memoryRepository{
		rooms:     make(map[string]*models.Room),
		generator: cfg.Generator,
	}, nil
}

// CreateRoom stores the room under a code no other live room uses
func (r *memoryRepository) CreateRoom(ctx context.Context, input *CreateRoomInput) (*models.Room, error) {
	if input == nil || input.Room == nil {
		return nil, ErrNilRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := r.generator.Generate()
		if _, taken := r.rooms[code]; taken {
			continue
		}
		input.Room.Code = code
		r.rooms[code] = input.Room
		return input.Room, nil
	}

	return nil, ErrCodesExhausted
}

// GetRoom looks a room up by its normalized code
func (r *memoryRepository) GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error) {
	if input == nil {
		return nil, ErrRoomNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomcode.Normalize(input.Code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (r *memoryRepository) DeleteRoom(ctx context.Context, input *DeleteRoomInput) error {
	if input == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomcode.Normalize(input.Code))
	return nil
}

func (r *memoryRepository) CountRooms(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
