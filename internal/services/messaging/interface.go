package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/codered/internal/services/messaging Service

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetJoinMessage returns the system chat line for a participant joining
	GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error)

	// GetLeaveMessage returns the system chat line for a participant leaving
	GetLeaveMessage(ctx context.Context, input *GetLeaveMessageInput) (*GetLeaveMessageOutput, error)

	// GetDisabledMessage returns the system chat line for a participant voted out
	GetDisabledMessage(ctx context.Context, input *GetDisabledMessageInput) (*GetDisabledMessageOutput, error)

	// GetGameEndedMessage returns the headline shown with the final results
	GetGameEndedMessage(ctx context.Context, input *GetGameEndedMessageInput) (*GetGameEndedMessageOutput, error)
}
