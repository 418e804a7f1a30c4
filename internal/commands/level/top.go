package level

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

const maxTop = 25

var medals = []string{"🥇", "🥈", "🥉"}

// createTopCommand creates the !top command
func createTopCommand(b *bot.Bot) *discord.Command {
	return discord.NewCommand(
		"top",
		"Affiche le classement XP",
		"xp",
		topHandler(b),
	).WithArgs(
		discord.Arg{Name: "nombre", Type: discord.ArgInt, Default: 10},
	).WithAliases("leaderboard", "classement")
}

func topHandler(b *bot.Bot) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		n := ctx.Int("nombre")
		if n < 1 || n > maxTop {
			return ctx.Reply(fmt.Sprintf("❌ Le nombre doit être compris entre 1 et %d.", maxTop))
		}

		entries := b.XP.Leaderboard(n)
		if len(entries) == 0 {
			return ctx.Reply("📭 Personne n'a encore gagné d'XP.")
		}

		var sb strings.Builder
		for i, e := range entries {
			rank := fmt.Sprintf("**%d.**", i+1)
			if i < len(medals) {
				rank = medals[i]
			}
			fmt.Fprintf(&sb, "%s <@%s> · Niveau %d (%d XP)\n", rank, e.UserID, e.Level, e.Points)
		}

		return ctx.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       "🏆 Classement de la Veille",
			Description: sb.String(),
			Color:       0xf1c40f,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("%d membres classés", b.XP.Count())},
		})
	}
}
