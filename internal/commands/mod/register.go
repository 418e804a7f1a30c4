// Package mod provides the moderation commands: the warn ledger commands and
// channel purge. Each command is in its own file.
package mod

import (
	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// Register adds every moderation command to h
func Register(h *discord.CommandHandler, b *bot.Bot) {
	h.RegisterCommand(createWarnCommand(b))
	h.RegisterCommand(createWarnsCommand(b))
	h.RegisterCommand(createUnwarnCommand(b))
	h.RegisterCommand(createClearWarnsCommand(b))
	h.RegisterCommand(createClearCommand())
}
