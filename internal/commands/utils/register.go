// Package utils provides the utility commands: latency, help, runtime
// statistics and a status summary.
package utils

import (
	"time"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// Info is what the utility commands read from the gateway client.
// *discord.ExtendedClient implements it.
type Info interface {
	IsReady() bool
	GuildCount() int
	Uptime() time.Duration
	Latency() time.Duration
}

var _ Info = (*discord.ExtendedClient)(nil)

// Register adds every utility command to h
func Register(h *discord.CommandHandler, b *bot.Bot, info Info) {
	h.RegisterCommand(createPingCommand(info))
	h.RegisterCommand(createHelpCommand())
	h.RegisterCommand(createStatsCommand(b, info))
	h.RegisterCommand(createStatusCommand(b, info))
}
