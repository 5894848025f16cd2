package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/random"
)

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages
	random random.Source
}

// New creates a new messaging service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}

	return &service{
		random: cfg.Random,
	}, nil
}

// GetJoinMessage returns a message for when a participant joins a room
func (s *service) GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	messages := []string{
		"%s joined the review.",
		"%s pulled up a chair. Fresh eyes on the diff!",
		"%s is here. Somebody hide the off-by-one errors.",
		"A wild reviewer appears: %s.",
		"%s has entered the codebase. Trust no one.",
	}

	return &GetJoinMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.Name),
		Tone:    ToneFunny,
	}, nil
}

// GetLeaveMessage returns a message for when a participant leaves a room
func (s *service) GetLeaveMessage(ctx context.Context, input *GetLeaveMessageInput) (*GetLeaveMessageOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	var messages []string
	if input.Playing {
		messages = []string{
			"%s rage-quit mid-review.",
			"%s disconnected. Suspicious timing...",
			"%s left the game. Was it something in the code?",
		}
	} else {
		messages = []string{
			"%s left the room.",
			"%s logged off.",
		}
	}

	return &GetLeaveMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.Name),
		Tone:    ToneNeutral,
	}, nil
}

// GetDisabledMessage returns a message for when the room votes a participant out
func (s *service) GetDisabledMessage(ctx context.Context, input *GetDisabledMessageInput) (*GetDisabledMessageOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	if input.WasAdversary {
		messages := []string{
			"%s was the bugger all along! Caught red-handed.",
			"Busted! %s has been debugged.",
			"%s tried to sneak one past code review. Not today.",
		}
		return &GetDisabledMessageOutput{
			Message: fmt.Sprintf(s.pick(messages), input.Name),
			Tone:    ToneCelebration,
		}, nil
	}

	messages := []string{
		"%s was voted out... and was innocent. Oops.",
		"The room turned on %s. The real bugger is still out there.",
		"%s has been disabled. Wrong suspect!",
	}
	return &GetDisabledMessageOutput{
		Message: fmt.Sprintf(s.pick(messages), input.Name),
		Tone:    ToneFunny,
	}, nil
}

// GetGameEndedMessage returns a headline for the final results
func (s *service) GetGameEndedMessage(ctx context.Context, input *GetGameEndedMessageInput) (*GetGameEndedMessageOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	var title string
	var messages []string
	tone := ToneCelebration

	switch input.Winner {
	case models.FactionAllies:
		title = "Debuggers win!"
		messages = []string{
			"The bugger has been found and the build is green again.",
			"Code review works! The saboteur is out.",
			"Ship it! The debuggers caught the culprit.",
		}
	case models.FactionAdversary:
		title = "The bugger wins!"
		messages = []string{
			"Too few debuggers remain. The bugs live on.",
			"Production is on fire and the bugger is laughing.",
			"The saboteur outlasted the review. Better luck next sprint.",
		}
	default:
		title = "Game over!"
		tone = ToneNeutral
		messages = []string{
			"All rounds complete. Time to check the scoreboard.",
			"That's a wrap on this release cycle.",
		}
	}

	message := s.pick(messages)
	if len(input.TopScorerNames) > 0 {
		message = fmt.Sprintf("%s Top score: %s.", message, strings.Join(input.TopScorerNames, ", "))
	}

	return &GetGameEndedMessageOutput{
		Title:   title,
		Message: message,
		Tone:    tone,
	}, nil
}

func (s *service) pick(messages []string) string {
	return messages[s.random.Intn(len(messages))]
}
