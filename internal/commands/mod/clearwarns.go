package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// createClearWarnsCommand creates the !clearwarns command
func createClearWarnsCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Efface tous les avertissements d'un membre",
		"mod",
		clearWarnsHandler(b),
	).WithArgs(
		discord.Arg{Name: "membre", Type: discord.ArgUser, Required: true},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func clearWarnsHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := ctx.User("membre")

		n, err := b.Warns.Clear(target.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not clear warns of %s: %v", target.ID, err), "CMD-ClearWarns")
			return ctx.Reply("❌ Impossible d'effacer les avertissements, réessaie plus tard.")
		}
		if n == 0 {
			return ctx.Reply(fmt.Sprintf("ℹ️ <@%s> n'avait aucun avertissement.", target.ID))
		}
		return ctx.Reply(fmt.Sprintf("🧹 %d avertissement(s) effacé(s) pour <@%s>.", n, target.ID))
	}
}
