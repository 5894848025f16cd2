package server

// Error is a server construction error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig      Error = "config cannot be nil"
	ErrNilGameService Error = "game service cannot be nil"
	ErrNilHandler     Error = "socket handlers cannot be nil"
)
