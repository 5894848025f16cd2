package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/codered/internal/services/game Service,Publisher,Announcer

import "context"

// Service defines the interface for game operations
type Service interface {
	// CreateRoom creates a room with the caller as its host
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// JoinRoom adds a participant to a room in the lobby
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error)

	// LeaveRoom removes a participant; it is also the disconnect path
	LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error)

	// ToggleReady flips a participant's lobby ready flag
	ToggleReady(ctx context.Context, input *ToggleReadyInput) (*ToggleReadyOutput, error)

	// StartGame moves the room from the lobby into round 1
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)

	// Buzz opens an accusation vote
	Buzz(ctx context.Context, input *BuzzInput) (*BuzzOutput, error)

	// CastVote records or replaces a participant's ballot in the open vote
	CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error)

	// SubmitFix checks an ally's fix against the round's correct artifact
	SubmitFix(ctx context.Context, input *SubmitFixInput) (*SubmitFixOutput, error)

	// SubmitDefectUpdate replaces the round's defect content; adversary only
	SubmitDefectUpdate(ctx context.Context, input *SubmitDefectUpdateInput) (*SubmitDefectUpdateOutput, error)

	// PlayAgain resets a finished game back to the lobby
	PlayAgain(ctx context.Context, input *PlayAgainInput) (*PlayAgainOutput, error)

	// SendChat broadcasts a chat message to the room
	SendChat(ctx context.Context, input *SendChatInput) (*SendChatOutput, error)

	// GetRoom returns the room as seen by one participant
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// GetRoomSummary returns public information about a room
	GetRoomSummary(ctx context.Context, input *GetRoomSummaryInput) (*GetRoomSummaryOutput, error)
}
