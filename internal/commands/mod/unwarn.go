package mod

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// createUnwarnCommand creates the !unwarn command. Index is the 1-based
// position shown by !warns.
func createUnwarnCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"unwarn",
		"Retire un avertissement d'un membre",
		"mod",
		unwarnHandler(b),
	).WithArgs(
		discord.Arg{Name: "membre", Type: discord.ArgUser, Required: true},
		discord.Arg{Name: "index", Type: discord.ArgInt, Required: true},
	).WithAliases("removewarn").WithUserPermissions(discordgo.PermissionModerateMembers)
}

func unwarnHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := ctx.User("membre")
		index := ctx.Int("index")

		ok, err := b.Warns.Remove(target.ID, index)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not remove warn %d of %s: %v", index, target.ID, err), "CMD-Unwarn")
			return ctx.Reply("❌ Impossible de retirer l'avertissement, réessaie plus tard.")
		}
		if !ok {
			return ctx.Reply(fmt.Sprintf("❌ Index invalide : <@%s> a %d avertissement(s).", target.ID, len(b.Warns.List(target.ID))))
		}
		return ctx.Reply(fmt.Sprintf("🗑️ Avertissement #%d de <@%s> retiré.", index, target.ID))
	}
}
