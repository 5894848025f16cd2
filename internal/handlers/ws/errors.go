package ws

// Error is a transport error reported through the ack channel
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig       Error = "config cannot be nil"
	ErrNilGameService  Error = "game service cannot be nil"
	ErrNilDocuments    Error = "document relay cannot be nil"
	ErrNilHub          Error = "hub cannot be nil"
	ErrNilUUID         Error = "UUID generator cannot be nil"
	ErrInvalidFrame    Error = "invalid frame"
	ErrInvalidPayload  Error = "invalid payload"
	ErrUnknownAction   Error = "unknown action"
	ErrRateLimited     Error = "too many messages, slow down"
	ErrNotInRoom       Error = "join or create a room first"
	ErrAlreadyInRoom   Error = "already in a room"
	ErrMissingRoomCode Error = "room code is required"
)
