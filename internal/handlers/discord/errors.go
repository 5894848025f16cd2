package discord

// Error is a custom error type for announcer errors
type Error string

// Error implements the error interface
func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilConfig      Error = "config cannot be nil"
	ErrMissingWebhook Error = "webhook ID and token are required"
	ErrNilMatch       Error = "match cannot be nil"
)
