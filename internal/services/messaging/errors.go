package messaging

// Error is a messaging error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig Error = "config cannot be nil"
	ErrNilRandom Error = "random source cannot be nil"
	ErrNilInput  Error = "input cannot be nil"
)
