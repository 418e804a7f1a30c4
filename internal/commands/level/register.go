// Package level provides the XP commands: a member's level, the leaderboard
// and its CSV export.
package level

import (
	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// Register adds every XP command to h
func Register(h *discord.CommandHandler, b *bot.Bot) {
	h.RegisterCommand(createLevelCommand(b))
	h.RegisterCommand(createTopCommand(b))
	h.RegisterCommand(createExportXPCommand(b))
}
