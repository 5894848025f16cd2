package relay

import (
	"encoding/json"
)

// MessageType identifies a relay message
type MessageType int

const (
	// MessageSyncRequest asks the server for its full state
	MessageSyncRequest MessageType = 0

	// MessageSyncResponse carries a full state
	MessageSyncResponse MessageType = 1

	// MessageUpdate carries an incremental update
	MessageUpdate MessageType = 2

	// MessageAwareness carries one participant's presence record
	MessageAwareness MessageType = 3
)

// Message is the JSON frame exchanged on a document connection
type Message struct {
	Type MessageType `json:"type"`

	// Update is an encoded crdt update or state
	Update json.RawMessage `json:"update,omitempty"`

	// Reset tells clients to replace their document instead of merging
	Reset bool `json:"reset,omitempty"`

	// ParticipantID names the owner of an awareness record
	ParticipantID string `json:"participantId,omitempty"`

	// State is the awareness record; null removes it
	State json.RawMessage `json:"state,omitempty"`
}

type ConnectInput struct {
	RoomCode string
	Peer     Peer
}

type ReceiveInput struct {
	RoomCode string
	Peer     Peer
	Data     []byte
}

type DisconnectInput struct {
	RoomCode string
	Peer     Peer
}

type SeedInput struct {
	RoomCode string
	Text     string

	// Generation names this seed. Seeds with different generations share no
	// element ids, so edits made against an earlier seed never attach to it.
	Generation string
}

type DestroyInput struct {
	RoomCode string
}

type GetTextInput struct {
	RoomCode string
}

type GetTextOutput struct {
	Text  string
	Peers int
}
