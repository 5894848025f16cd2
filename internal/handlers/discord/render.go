package discord

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/codered/internal/models"
)

const (
	colorAllies    = 0x00ff88
	colorAdversary = 0xff3366
	colorNeutral   = 0x00ddff
)

// renderMatchEmbed renders the results of a finished match
func renderMatchEmbed(match *models.Match) *discordgo.MessageEmbed {
	title := "Game over"
	color := colorNeutral
	switch match.Winner {
	case models.FactionAllies:
		title = "The debuggers win! 🐛🔨"
		color = colorAllies
	case models.FactionAdversary:
		title = "The bugger wins! 🐛🔥"
		color = colorAdversary
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Room",
			Value:  match.RoomCode,
			Inline: true,
		},
		{
			Name:   "Rounds",
			Value:  fmt.Sprintf("%d", match.RoundsPlayed),
			Inline: true,
		},
	}

	// Sort players by score, best first
	players := make([]*models.MatchPlayer, len(match.Players))
	copy(players, match.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	var scores strings.Builder
	for _, p := range players {
		line := fmt.Sprintf("**%s**: %d", p.Name, p.Score)
		if p.Disabled {
			line += " (disabled)"
		}
		scores.WriteString(line + "\n")
	}
	if scores.Len() > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Scores",
			Value: scores.String(),
		})
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: match.Reason,
		Color:       color,
		Fields:      fields,
		Timestamp:   match.EndedAt.UTC().Format(time.RFC3339),
	}
}
