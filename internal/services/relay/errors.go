package relay

// Error is a relay error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig        Error = "config cannot be nil"
	ErrNilClock         Error = "clock cannot be nil"
	ErrNilPeer          Error = "peer cannot be nil"
	ErrEmptyRoomCode    Error = "room code cannot be empty"
	ErrDocumentNotFound Error = "document not found"
	ErrUnknownMessage   Error = "unknown message type"
)
