package messaging

import (
	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/random"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneCelebration is a celebratory tone
	ToneCelebration MessageTone = "celebration"
)

// Config holds configuration for the messaging service
type Config struct {
	// Random picks between message variants
	Random random.Source
}

type GetJoinMessageInput struct {
	Name string
}

type GetJoinMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetLeaveMessageInput struct {
	Name string

	// Playing is true when the participant left mid-game
	Playing bool
}

type GetLeaveMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetDisabledMessageInput struct {
	Name string

	// WasAdversary is true when the vote caught the adversary
	WasAdversary bool
}

type GetDisabledMessageOutput struct {
	Message string
	Tone    MessageTone
}

type GetGameEndedMessageInput struct {
	Winner models.Faction
	Reason string

	// TopScorerNames holds the names sharing the best score
	TopScorerNames []string
}

type GetGameEndedMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}
