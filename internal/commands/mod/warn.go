package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/internal/moderation"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/metrics"
)

// createWarnCommand creates the !warn command
func createWarnCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"warn",
		"Avertit un membre",
		"mod",
		warnHandler(b),
	).WithArgs(
		discord.Arg{Name: "membre", Type: discord.ArgUser, Required: true},
		discord.Arg{Name: "raison", Type: discord.ArgText},
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func warnHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := ctx.User("membre")
		if target.ID == ctx.Author().ID {
			return ctx.Reply("❌ Tu ne peux pas t'avertir toi-même.")
		}

		reason := ctx.String("raison")
		count, err := b.Warns.Add(target.ID, reason, discord.DisplayName(ctx.Author()), time.Now())
		if err != nil {
			logger.Error(fmt.Sprintf("Could not save warn for %s: %v", target.ID, err), "CMD-Warn")
			return ctx.Reply("❌ Impossible d'enregistrer l'avertissement, réessaie plus tard.")
		}
		metrics.WarnsIssued.Inc()

		if reason == "" {
			reason = moderation.DefaultReason
		}
		return ctx.Reply(fmt.Sprintf("⚠️ <@%s> a reçu un avertissement (**%d** au total).\n**Raison :** %s\n**Modérateur :** %s",
			target.ID,
			count,
			reason,
			discord.DisplayName(ctx.Author()),
		))
	}
}
