package config

// Error is a configuration error
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidValue      Error = "invalid configuration value"
	ErrIncompleteWebhook Error = "DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together"
)
