package room

// Error is a room repository error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig      Error = "config cannot be nil"
	ErrNilGenerator   Error = "code generator cannot be nil"
	ErrNilRoom        Error = "room cannot be nil"
	ErrRoomNotFound   Error = "room not found"
	ErrCodesExhausted Error = "could not find a free room code"
)
