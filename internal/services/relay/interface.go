package relay

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/codered/internal/services/relay Service,Peer

import (
	"context"
)

// Service keeps one replicated document per room and relays updates between its peers
type Service interface {
	// Connect attaches a peer to the room's document, creating it if needed,
	// and pushes the current state and awareness snapshot to the peer
	Connect(ctx context.Context, input *ConnectInput) error

	// Receive handles one message from a connected peer
	Receive(ctx context.Context, input *ReceiveInput) error

	// Disconnect detaches a peer and clears its awareness record
	Disconnect(ctx context.Context, input *DisconnectInput) error

	// Seed replaces the room's document with the given text and tells every peer to reset
	Seed(ctx context.Context, input *SeedInput) error

	// Destroy drops the room's document and closes its peers
	Destroy(ctx context.Context, input *DestroyInput) error

	// GetText returns the current text of the room's document
	GetText(ctx context.Context, input *GetTextInput) (*GetTextOutput, error)
}

// Peer is one connection to a room's document
type Peer interface {
	// ParticipantID identifies the participant behind the connection
	ParticipantID() string

	// Send queues a message without blocking. It returns false when the message was dropped.
	Send(msg []byte) bool

	// Close terminates the connection
	Close()
}
