// Package commands wires every command group into the command table.
// Commands are organized in subdirectories by category (level, mod, veille, utils).
package commands

import (
	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/internal/commands/level"
	"github.com/PancyStudios/VeilleBot/internal/commands/mod"
	"github.com/PancyStudios/VeilleBot/internal/commands/utils"
	"github.com/PancyStudios/VeilleBot/internal/commands/veille"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// RegisterAll registers all commands with the client's command handler
func RegisterAll(client *discord.ExtendedClient, b *bot.Bot) {
	register(client.CommandHandler, b, client)
}

func register(h *discord.CommandHandler, b *bot.Bot, info utils.Info) {
	// XP commands (!level, !top, !exportxp)
	level.Register(h, b)

	// Moderation commands (!warn, !warns, !unwarn, !clearwarns, !clear)
	mod.Register(h, b)

	// Archive commands (!articles, !search, !export, !scrape)
	veille.Register(h, b)

	// Utility commands (!ping, !help, !stats, !status)
	utils.Register(h, b, info)
}
