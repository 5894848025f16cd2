package match

// Error is a match repository error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig      Error = "config cannot be nil"
	ErrNilRedisClient Error = "redis client cannot be nil"
	ErrNilMatch       Error = "input and match cannot be nil"
	ErrEmptyMatchID   Error = "match ID cannot be empty"
	ErrEmptyRoomCode  Error = "room code cannot be empty"
	ErrMatchNotFound  Error = "match not found"
)
