package mod

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// maxWarnFields is the embed field limit
const maxWarnFields = 25

// createWarnsCommand creates the !warns command. Anyone may list their own
// warns; listing another member's needs Manage Messages.
func createWarnsCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"warns",
		"Liste les avertissements d'un membre",
		"mod",
		warnsHandler(b),
	).WithArgs(
		discord.Arg{Name: "membre", Type: discord.ArgUser},
	).WithAliases("warnings")
}

func warnsHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		target := ctx.User("membre")

		if target.ID != ctx.Author().ID {
			perms, err := ctx.Session.UserChannelPermissions(ctx.Author().ID, ctx.ChannelID())
			if err != nil {
				perms = 0
			}
			isModerator := perms&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
			if !isModerator {
				return ctx.Reply("❌ Tu n'as pas la permission de voir les avertissements d'un autre membre.")
			}
		}

		warns := b.Warns.List(target.ID)
		if len(warns) == 0 {
			return ctx.Reply(fmt.Sprintf("✅ <@%s> n'a aucun avertissement.", target.ID))
		}

		embed := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 Avertissements de %s", discord.DisplayName(target)),
			Description: fmt.Sprintf("> 💫 **Nombre d'avertissements :** %d", len(warns)),
			Color:       0x3498db,
			Timestamp:   time.Now().Format(time.RFC3339),
		}
		for i, w := range warns {
			if i == maxWarnFields {
				break
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  fmt.Sprintf("#%d · %s", i+1, w.Date),
				Value: fmt.Sprintf("%s\n*par %s*", w.Reason, w.Mod),
			})
		}
		if len(warns) > maxWarnFields {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("%d avertissements plus anciens non affichés", len(warns)-maxWarnFields),
			}
		}
		return ctx.ReplyEmbed(embed)
	}
}
