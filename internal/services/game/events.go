package game

import (
	"context"

	"github.com/KirkDiggler/codered/internal/models"
)

// EventName identifies an outbound event
type EventName string

const (
	EventRoomUpdated    EventName = "room-updated"
	EventPlayerJoined   EventName = "player-joined"
	EventPlayerLeft     EventName = "player-left"
	EventPlayerDisabled EventName = "player-disabled"
	EventGameStarted    EventName = "game-started"
	EventRoleAssigned   EventName = "role-assigned"
	EventRoundStarted   EventName = "round-started"
	EventRoundEnded     EventName = "round-ended"
	EventTimerUpdate    EventName = "timer-update"
	EventPlayerBuzzed   EventName = "player-buzzed"
	EventVoteUpdated    EventName = "vote-updated"
	EventVoteTimeUpdate EventName = "vote-time-update"
	EventVoteEnded      EventName = "vote-ended"
	EventVoteCancelled  EventName = "vote-cancelled"
	EventFixSubmitted   EventName = "fix-submitted"
	EventGameEnded      EventName = "game-ended"
	EventGameReset      EventName = "game-reset"
	EventChatMessage    EventName = "chat-message"
)

// Publisher delivers events to the connections of a room
type Publisher interface {
	// Publish is called with the room locked. It must not block on slow
	// recipients or call back into the game service.
	Publish(ctx context.Context, input *PublishInput) error
}

// PublishInput addresses one event
type PublishInput struct {
	RoomCode string
	Event    EventName
	Data     any

	// RecipientID limits delivery to one participant
	RecipientID string

	// ExcludeID skips one participant
	ExcludeID string
}

// Announcer reports finished games outside the room
type Announcer interface {
	AnnounceMatch(ctx context.Context, match *models.Match) error
}

// RoomEvent carries the room view
type RoomEvent struct {
	Room *RoomView `json:"room"`
}

type PlayerJoinedEvent struct {
	Participant *MemberView `json:"participant"`
	Room        *RoomView   `json:"room"`
}

type PlayerLeftEvent struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	Room          *RoomView `json:"room"`
}

type PlayerDisabledEvent struct {
	ParticipantID string      `json:"participantId"`
	Role          models.Role `json:"role"`
}

type RoleAssignedEvent struct {
	Role        models.Role `json:"role"`
	RoundNumber int         `json:"roundNumber"`
}

type RoundStartedEvent struct {
	Round *RoundView `json:"round"`
	Room  *RoomView  `json:"room"`
}

// RoundSummary is revealed when a round ends
type RoundSummary struct {
	Number            int    `json:"number"`
	Reason            string `json:"reason"`
	AdversaryID       string `json:"adversaryId"`
	DefectDescription string `json:"defectDescription"`
	CorrectArtifact   string `json:"correctArtifact"`

	// FinalText is the shared document as the team left it
	FinalText    string         `json:"finalText"`
	Buzzes       int            `json:"buzzes"`
	BonusAwarded bool           `json:"bonusAwarded"`
	Scores       map[string]int `json:"scores"`
}

type TimerEvent struct {
	Remaining int `json:"remaining"`
}

type PlayerBuzzedEvent struct {
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	SuspectID     string    `json:"suspectId,omitempty"`
	Vote          *VoteView `json:"vote"`
}

type VoteUpdatedEvent struct {
	Vote *VoteView `json:"vote"`
}

type VoteEndedEvent struct {
	VoteID   string         `json:"voteId"`
	Outcome  VoteOutcome    `json:"outcome"`
	TargetID string         `json:"targetId,omitempty"`
	Counts   map[string]int `json:"counts"`
}

type VoteCancelledEvent struct {
	VoteID        string `json:"voteId"`
	Reason        string `json:"reason"`
	ParticipantID string `json:"participantId,omitempty"`
}

type FixSubmittedEvent struct {
	ParticipantID   string `json:"participantId"`
	Name            string `json:"name"`
	IsCorrect       bool   `json:"isCorrect"`
	Explanation     string `json:"explanation"`
	CorrectArtifact string `json:"correctArtifact"`
}

type GameEndedEvent struct {
	Winner      models.Faction `json:"winner"`
	Reason      string         `json:"reason"`
	AdversaryID string         `json:"adversaryId,omitempty"`
	TopScorers  []string       `json:"topScorers"`
	Scores      map[string]int `json:"scores"`
	Message     string         `json:"message"`
	Room        *RoomView      `json:"room"`
}

type ChatMessageEvent struct {
	ParticipantID string `json:"participantId,omitempty"`
	Name          string `json:"name,omitempty"`
	Text          string `json:"text"`
	System        bool   `json:"system"`
	SentAt        int64  `json:"sentAt"`
}

// outbox collects side effects while a room is locked; they run after it is released
type outbox struct {
	code    string
	events  []*PublishInput
	matches []*models.Match
}

func newOutbox(code string) *outbox {
	return &outbox{code: code}
}

func (o *outbox) broadcast(event EventName, data any) {
	o.events = append(o.events, &PublishInput{RoomCode: o.code, Event: event, Data: data})
}

func (o *outbox) broadcastExcept(excludeID string, event EventName, data any) {
	o.events = append(o.events, &PublishInput{RoomCode: o.code, Event: event, Data: data, ExcludeID: excludeID})
}

func (o *outbox) send(recipientID string, event EventName, data any) {
	o.events = append(o.events, &PublishInput{RoomCode: o.code, Event: event, Data: data, RecipientID: recipientID})
}

func (o *outbox) archive(match *models.Match) {
	o.matches = append(o.matches, match)
}
