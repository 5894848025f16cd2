package discord

//go:generate mockgen -package=mocks -destination=mocks/mock_webhook.go github.com/KirkDiggler/codered/internal/handlers/discord WebhookExecutor

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/models"
)

// WebhookExecutor is the part of a discordgo session the announcer needs
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config holds the configuration for the announcer
type Config struct {
	// WebhookID and Token identify the channel webhook results are posted to
	WebhookID string
	Token     string

	// Username overrides the webhook's display name
	Username string

	// Session executes the webhook; a token-less discordgo session is created if nil
	Session WebhookExecutor
}

// Announcer posts finished matches to a Discord channel
type Announcer struct {
	session   WebhookExecutor
	webhookID string
	token     string
	username  string
}

// New creates a new announcer
func New(cfg *Config) (*Announcer, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.WebhookID == "" || cfg.Token == "" {
		return nil, ErrMissingWebhook
	}

	session := cfg.Session
	if session == nil {
		// webhooks authenticate with their own token
		s, err := discordgo.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to create Discord session: %w", err)
		}
		session = s
	}

	username := cfg.Username
	if username == "" {
		username = "CodeRed"
	}

	return &Announcer{
		session:   session,
		webhookID: cfg.WebhookID,
		token:     cfg.Token,
		username:  username,
	}, nil
}

// AnnounceMatch posts the results of a finished match
func (a *Announcer) AnnounceMatch(ctx context.Context, match *models.Match) error {
	if match == nil {
		return ErrNilMatch
	}

	params := &discordgo.WebhookParams{
		Username: a.username,
		Embeds:   []*discordgo.MessageEmbed{renderMatchEmbed(match)},
	}

	if _, err := a.session.WebhookExecute(a.webhookID, a.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}

	log.Debug().
		Str("room", match.RoomCode).
		Str("match", match.ID).
		Msg("Match announced")
	return nil
}
