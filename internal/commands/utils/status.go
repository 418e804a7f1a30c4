package utils

import (
	"fmt"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// createStatusCommand creates the !status command
func createStatusCommand(b *bot.Bot, info Info) *discord.Command {
	return discord.NewCommand(
		"status",
		"Affiche l'état du bot et de ses services",
		"utils",
		func(ctx *discord.CommandContext) error {
			return ctx.Reply(fmt.Sprintf(
				"📊 **État du bot**\n"+
					"• Bot : %s\n"+
					"• Archive : %s\n"+
					"• Scraper : %s\n"+
					"• MQTT : %s\n"+
					"• Serveurs : %d\n"+
					"• Membres classés : %d",
				onOff(info.IsReady(), "🟢 En ligne", "🔴 Hors ligne"),
				onOff(b.Archive != nil, "🟢 Disponible", "⚪ Désactivée"),
				onOff(b.Scraper.Enabled(), "🟢 Configuré", "⚪ Désactivé"),
				onOff(b.Publisher.Enabled(), "🟢 Activé", "⚪ Désactivé"),
				info.GuildCount(),
				b.XP.Count(),
			))
		},
	)
}

func onOff(ok bool, on, off string) string {
	if ok {
		return on
	}
	return off
}
