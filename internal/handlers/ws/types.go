package ws

import (
	"encoding/json"

	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/services/game"
)

// Action names an inbound request
type Action string

const (
	ActionCreateRoom         Action = "create-room"
	ActionJoinRoom           Action = "join-room"
	ActionToggleReady        Action = "toggle-ready"
	ActionStartGame          Action = "start-game"
	ActionBuzz               Action = "buzz"
	ActionCastVote           Action = "cast-vote"
	ActionSubmitFix          Action = "submit-fix"
	ActionSubmitDefectUpdate Action = "submit-defect-update"
	ActionPlayAgain          Action = "play-again"
	ActionLeave              Action = "leave"
	ActionChatMessage        Action = "chat-message"
	ActionGetRoom            Action = "get-room"
)

// Frame types sent by the server
const (
	FrameAck   = "ack"
	FrameEvent = "event"
)

// Request is a client frame. Every request gets exactly one Ack with the same ID.
type Request struct {
	ID      string          `json:"id"`
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Ack answers one Request
type Ack struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Event is a server push
type Event struct {
	Type  string         `json:"type"`
	Event game.EventName `json:"event"`
	Data  any            `json:"data,omitempty"`
}

type CreateRoomPayload struct {
	DisplayName string `json:"displayName"`
}

type JoinRoomPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type BuzzPayload struct {
	SuspectID string `json:"suspectId"`
}

type CastVotePayload struct {
	TargetID string `json:"targetId"`
	Abstain  bool   `json:"abstain"`
}

// ContentPayload carries a fix or a defect update
type ContentPayload struct {
	Content string `json:"content"`
}

type ChatPayload struct {
	Text string `json:"text"`
}

// JoinedData answers create-room and join-room
type JoinedData struct {
	RoomCode      string         `json:"roomCode"`
	ParticipantID string         `json:"participantId"`
	Room          *game.RoomView `json:"room"`
}

type RoomData struct {
	Room *game.RoomView `json:"room"`
	Role models.Role    `json:"role,omitempty"`
}

type ReadyData struct {
	IsReady bool `json:"isReady"`
}

type BuzzData struct {
	VoteID string `json:"voteId"`
}

type VoteData struct {
	Resolved bool `json:"resolved"`
}

type FixData struct {
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}
