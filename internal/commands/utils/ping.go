package utils

import (
	"fmt"

	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// createPingCommand creates the !ping command
func createPingCommand(info Info) *discord.Command {
	return discord.NewCommand(
		"ping",
		"Vérifie la latence du bot",
		"utils",
		func(ctx *discord.CommandContext) error {
			return ctx.Reply(fmt.Sprintf("🏓 Pong ! Latence : %dms", info.Latency().Milliseconds()))
		},
	)
}
