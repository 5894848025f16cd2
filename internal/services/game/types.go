package game

import (
	"time"

	"github.com/KirkDiggler/codered/internal/common/clock"
	"github.com/KirkDiggler/codered/internal/common/uuid"
	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/random"
	matchRepo "github.com/KirkDiggler/codered/internal/repositories/match"
	roomRepo "github.com/KirkDiggler/codered/internal/repositories/room"
	"github.com/KirkDiggler/codered/internal/samples"
	"github.com/KirkDiggler/codered/internal/services/messaging"
	"github.com/KirkDiggler/codered/internal/services/relay"
)

const (
	// FixReward is awarded to every active ally for a correct fix
	FixReward = 10

	// FixPenalty is taken from the submitter of an incorrect fix
	FixPenalty = 5

	// NoBuzzBonus is awarded to the adversary when a round times out with no buzz holding it
	NoBuzzBonus = 15

	// DefaultTotalRounds is the number of rounds per game
	DefaultTotalRounds = 3

	// DefaultRoundDuration is the length of a round
	DefaultRoundDuration = 90 * time.Second

	// DefaultVoteDuration is how long a vote stays open
	DefaultVoteDuration = 60 * time.Second

	// DefaultRoundIntermission is the pause between a round ending and the next starting
	DefaultRoundIntermission = 5 * time.Second

	// DefaultFixRevealDelay is how long the fix result is shown before the round ends
	DefaultFixRevealDelay = 3 * time.Second

	// MinDisplayNameLength and MaxDisplayNameLength bound trimmed display names
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 20

	// MaxChatLength bounds chat messages
	MaxChatLength = 500
)

// Config holds configuration for the game service
type Config struct {
	// TotalRounds is the number of rounds per game
	TotalRounds int

	// RoundDuration is the length of each round
	RoundDuration time.Duration

	// VoteDuration is how long a vote stays open
	VoteDuration time.Duration

	// RoundIntermission is the pause between rounds
	RoundIntermission time.Duration

	// FixRevealDelay is how long a fix result is shown before the round ends
	FixRevealDelay time.Duration

	// Repository dependencies
	RoomRepo roomRepo.Repository

	// MatchRepo archives finished games; optional
	MatchRepo matchRepo.Repository

	// Service dependencies
	Documents relay.Service
	Publisher Publisher
	Messaging messaging.Service
	Catalog   samples.Catalog

	// Announcer reports finished games outside the room; optional
	Announcer Announcer

	Random        random.Source
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	// DisplayName is the name of the creating participant
	DisplayName string
}

// CreateRoomOutput contains the result of creating a room
type CreateRoomOutput struct {
	RoomCode      string
	ParticipantID string
	Room          *RoomView
}

// JoinRoomInput contains parameters for joining a room
type JoinRoomInput struct {
	RoomCode    string
	DisplayName string

	// ParticipantID lets the transport pick the ID up front; generated when empty
	ParticipantID string
}

// JoinRoomOutput contains the result of joining a room
type JoinRoomOutput struct {
	RoomCode      string
	ParticipantID string
	Room          *RoomView
}

// LeaveRoomInput contains parameters for leaving a room
type LeaveRoomInput struct {
	RoomCode      string
	ParticipantID string
}

// LeaveRoomOutput contains the result of leaving a room
type LeaveRoomOutput struct {
	// RoomDestroyed is true when the participant was the last member
	RoomDestroyed bool
}

type ToggleReadyInput struct {
	RoomCode      string
	ParticipantID string
}

type ToggleReadyOutput struct {
	IsReady bool
}

type StartGameInput struct {
	RoomCode      string
	ParticipantID string
}

type StartGameOutput struct {
	Room *RoomView
}

// BuzzInput contains parameters for buzzing
type BuzzInput struct {
	RoomCode      string
	ParticipantID string

	// SuspectID optionally names the accused; the buzzer's ballot is cast against them
	SuspectID string
}

type BuzzOutput struct {
	VoteID string
}

// CastVoteInput contains a ballot
type CastVoteInput struct {
	RoomCode      string
	ParticipantID string

	// TargetID is the participant voted against, ignored when Abstain is set
	TargetID string

	// Abstain records an explicit skip
	Abstain bool
}

type CastVoteOutput struct {
	// Resolved is true when this ballot completed the vote
	Resolved bool
}

type SubmitFixInput struct {
	RoomCode      string
	ParticipantID string
	Content       string
}

type SubmitFixOutput struct {
	IsCorrect   bool
	Explanation string
}

type SubmitDefectUpdateInput struct {
	RoomCode      string
	ParticipantID string
	Content       string
}

type SubmitDefectUpdateOutput struct{}

type PlayAgainInput struct {
	RoomCode      string
	ParticipantID string
}

type PlayAgainOutput struct {
	Room *RoomView
}

type SendChatInput struct {
	RoomCode      string
	ParticipantID string
	Text          string
}

type SendChatOutput struct{}

type GetRoomInput struct {
	RoomCode      string
	ParticipantID string
}

// GetRoomOutput is the room as seen by one participant, including their secret role
type GetRoomOutput struct {
	Room *RoomView
	Role models.Role
}

type GetRoomSummaryInput struct {
	RoomCode string
}

// GetRoomSummaryOutput holds what anyone with the code may see
type GetRoomSummaryOutput struct {
	Code         string           `json:"code"`
	State        models.GameState `json:"state"`
	Members      int              `json:"members"`
	MaxMembers   int              `json:"maxMembers"`
	Joinable     bool             `json:"joinable"`
	CurrentRound int              `json:"currentRound"`
	TotalRounds  int              `json:"totalRounds"`
}
