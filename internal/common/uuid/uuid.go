package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/KirkDiggler/codered/internal/common/uuid UUID

// UUID generates participant, round, vote and match ids
type UUID interface {
	NewUUID() string
}

// DefaultUUID generates time-ordered ids
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a v7 UUID, or a v4 UUID if v7 generation fails
func (d *DefaultUUID) NewUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
