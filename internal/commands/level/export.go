package level

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/export"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// createExportXPCommand creates the !exportxp command
func createExportXPCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"exportxp",
		"Exporte le classement XP complet en CSV",
		"xp",
		exportXPHandler(b),
	).WithUserPermissions(discordgo.PermissionManageMessages)
}

func exportXPHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		entries := b.XP.Leaderboard(0)
		if len(entries) == 0 {
			return ctx.Reply("📭 Aucune donnée XP à exporter.")
		}

		var buf bytes.Buffer
		if err := export.Leaderboard(&buf, entries); err != nil {
			logger.Error("Could not render XP export: "+err.Error(), "CMD-ExportXP")
			return ctx.Reply("❌ Impossible de générer l'export.")
		}
		if err := ctx.ReplyFile("xp.csv", &buf); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("%s exported XP for %d users", ctx.Author().ID, len(entries)), "CMD-ExportXP")
		return nil
	}
}
